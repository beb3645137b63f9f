package service

import (
	"context"
	"reflect"
	"regexp"
	"strings"

	"github.com/edutech-labs/course-booking/internal/model"
	"github.com/edutech-labs/course-booking/internal/repository"
)

// CourseStore is the persistence surface the course service needs.
type CourseStore interface {
	Create(ctx context.Context, slug string, in model.CourseInput) (*model.Course, error)
	List(ctx context.Context, f repository.CourseFilter) ([]model.Course, error)
	GetByID(ctx context.Context, id string) (*model.Course, error)
	Update(ctx context.Context, course *model.Course, actor string, changes map[string]model.FieldChange) error
	SoftDelete(ctx context.Context, id string) error
	CountEnrollments(ctx context.Context, courseID string) (int, error)
}

// CourseService implements the admin-facing course operations and the
// public catalog reads.
type CourseService struct {
	courses CourseStore
}

// NewCourseService constructs a CourseService.
func NewCourseService(courses CourseStore) *CourseService {
	return &CourseService{courses: courses}
}

// ListPublished returns the public catalog, optionally filtered.
func (s *CourseService) ListPublished(ctx context.Context, query, category, language string) ([]model.Course, error) {
	return s.courses.List(ctx, repository.CourseFilter{
		Query:    strings.TrimSpace(query),
		Category: strings.TrimSpace(category),
		Language: strings.TrimSpace(language),
	})
}

// ListAll returns every non-deleted course for the admin dashboard.
func (s *CourseService) ListAll(ctx context.Context) ([]model.Course, error) {
	return s.courses.List(ctx, repository.CourseFilter{IncludeAllState: true})
}

// Get returns a single course.
func (s *CourseService) Get(ctx context.Context, id string) (*model.Course, error) {
	if id == "" {
		return nil, invalid("id", "course id is required")
	}
	return s.courses.GetByID(ctx, id)
}

// Create validates the input and inserts a new course.
func (s *CourseService) Create(ctx context.Context, in model.CourseInput) (*model.Course, error) {
	normalizeCourseInput(&in)
	if err := validateCourseInput(in); err != nil {
		return nil, err
	}
	return s.courses.Create(ctx, slugify(in.Title), in)
}

// Update validates the input against the existing course, applies it, and
// records a field-level audit entry. The capacity may not be reduced below
// the current enrollment count; spots_available is recomputed from the new
// capacity so the ledger invariant holds.
func (s *CourseService) Update(ctx context.Context, id, actor string, in model.CourseInput) (*model.Course, error) {
	existing, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	normalizeCourseInput(&in)
	if err := validateCourseInput(in); err != nil {
		return nil, err
	}

	enrolled, err := s.courses.CountEnrollments(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.TotalCapacity < enrolled {
		return nil, invalid("total_capacity",
			"cannot reduce capacity below current enrollment")
	}

	updated := *existing
	updated.Title = in.Title
	updated.Slug = slugify(in.Title)
	updated.Description = in.Description
	updated.Thumbnail = in.Thumbnail
	updated.Duration = in.Duration
	updated.Time = in.Time
	updated.StartDate = in.StartDate
	updated.EndDate = in.EndDate
	updated.Price = in.Price
	updated.EarlyBirdPrice = in.EarlyBirdPrice
	updated.EarlyBirdDeadline = in.EarlyBirdDeadline
	updated.Instructor = in.Instructor
	updated.TotalCapacity = in.TotalCapacity
	updated.SpotsAvailable = in.TotalCapacity - enrolled
	updated.Categories = in.Categories
	updated.Language = in.Language
	updated.SkillLevel = in.SkillLevel
	updated.Status = in.Status
	updated.LearningObjectives = in.LearningObjectives
	updated.Prerequisites = in.Prerequisites
	updated.Materials = in.Materials

	changes := diffCourses(existing, &updated)
	if err := s.courses.Update(ctx, &updated, actor, changes); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete soft-deletes a course.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return invalid("id", "course id is required")
	}
	return s.courses.SoftDelete(ctx, id)
}

func normalizeCourseInput(in *model.CourseInput) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Instructor = strings.TrimSpace(in.Instructor)
	if in.Status == "" {
		in.Status = model.StatusDraft
	}
	if in.Language == "" {
		in.Language = "en"
	}
}

func validateCourseInput(in model.CourseInput) error {
	if in.Title == "" {
		return invalid("title", "title is required")
	}
	if in.Description == "" {
		return invalid("description", "description is required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return invalid("start_date", "start and end dates are required")
	}
	if in.StartDate.After(in.EndDate) {
		return invalid("start_date", "start date must be before end date")
	}
	if in.Price < 0 {
		return invalid("price", "price cannot be negative")
	}
	if in.TotalCapacity <= 0 {
		return invalid("total_capacity", "capacity must be a positive integer")
	}
	if in.EarlyBirdPrice != nil && *in.EarlyBirdPrice >= in.Price {
		return invalid("early_bird_price", "early bird price must be below the regular price")
	}
	if in.EarlyBirdDeadline != nil && in.EarlyBirdDeadline.After(in.StartDate) {
		return invalid("early_bird_deadline", "early bird deadline must be before the course starts")
	}
	if in.Language != "en" && in.Language != "de" {
		return invalid("language", "language must be en or de")
	}
	switch in.SkillLevel {
	case "beginner", "intermediate", "advanced":
	default:
		return invalid("skill_level", "skill level must be beginner, intermediate or advanced")
	}
	switch in.Status {
	case model.StatusPublished, model.StatusDraft, model.StatusArchived:
	default:
		return invalid("status", "status must be published, draft or archived")
	}
	return nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify builds a URL slug from a title.
func slugify(title string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// diffCourses returns the audit-trail changes between two course states.
// Version and timestamps are bookkeeping, not content, and are skipped.
func diffCourses(old, upd *model.Course) map[string]model.FieldChange {
	changes := make(map[string]model.FieldChange)
	record := func(field string, o, n any) {
		if !reflect.DeepEqual(o, n) {
			changes[field] = model.FieldChange{Old: o, New: n}
		}
	}
	record("title", old.Title, upd.Title)
	record("description", old.Description, upd.Description)
	record("thumbnail", old.Thumbnail, upd.Thumbnail)
	record("duration", old.Duration, upd.Duration)
	record("time", old.Time, upd.Time)
	record("start_date", old.StartDate, upd.StartDate)
	record("end_date", old.EndDate, upd.EndDate)
	record("price", old.Price, upd.Price)
	record("early_bird_price", old.EarlyBirdPrice, upd.EarlyBirdPrice)
	record("early_bird_deadline", old.EarlyBirdDeadline, upd.EarlyBirdDeadline)
	record("instructor", old.Instructor, upd.Instructor)
	record("total_capacity", old.TotalCapacity, upd.TotalCapacity)
	record("spots_available", old.SpotsAvailable, upd.SpotsAvailable)
	record("categories", old.Categories, upd.Categories)
	record("language", old.Language, upd.Language)
	record("skill_level", old.SkillLevel, upd.SkillLevel)
	record("status", old.Status, upd.Status)
	record("learning_objectives", old.LearningObjectives, upd.LearningObjectives)
	record("prerequisites", old.Prerequisites, upd.Prerequisites)
	record("materials", old.Materials, upd.Materials)
	return changes
}

// Package repository implements all database queries for the course booking
// platform. It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edutech-labs/course-booking/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrNoCapacity is returned when a course has fewer spots left than requested.
var ErrNoCapacity = errors.New("not enough spots available")

const courseColumns = `id, slug, title, description, thumbnail, duration, time_window,
	start_date, end_date, price, early_bird_price, early_bird_deadline, instructor,
	total_capacity, spots_available, categories, language, skill_level, status,
	learning_objectives, prerequisites, materials, version, created_at, updated_at`

// CourseFilter narrows a course listing. The zero value lists every
// published course.
type CourseFilter struct {
	Query           string
	Category        string
	Language        string
	IncludeAllState bool // admin listing: drafts and archived too (never deleted)
}

// CourseRepository handles persistence for courses and their audit trail.
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create inserts a new course. Spots available start equal to the total
// capacity.
func (r *CourseRepository) Create(ctx context.Context, slug string, in model.CourseInput) (*model.Course, error) {
	now := time.Now().UTC()
	course := &model.Course{
		ID:                 uuid.New().String(),
		Slug:               slug,
		Title:              in.Title,
		Description:        in.Description,
		Thumbnail:          in.Thumbnail,
		Duration:           in.Duration,
		Time:               in.Time,
		StartDate:          in.StartDate,
		EndDate:            in.EndDate,
		Price:              in.Price,
		EarlyBirdPrice:     in.EarlyBirdPrice,
		EarlyBirdDeadline:  in.EarlyBirdDeadline,
		Instructor:         in.Instructor,
		TotalCapacity:      in.TotalCapacity,
		SpotsAvailable:     in.TotalCapacity,
		Categories:         in.Categories,
		Language:           in.Language,
		SkillLevel:         in.SkillLevel,
		Status:             in.Status,
		LearningObjectives: in.LearningObjectives,
		Prerequisites:      in.Prerequisites,
		Materials:          in.Materials,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO courses (`+courseColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		         $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`,
		course.ID, course.Slug, course.Title, course.Description, course.Thumbnail,
		course.Duration, course.Time, course.StartDate, course.EndDate, course.Price,
		course.EarlyBirdPrice, course.EarlyBirdDeadline, course.Instructor,
		course.TotalCapacity, course.SpotsAvailable, course.Categories,
		course.Language, course.SkillLevel, course.Status,
		course.LearningObjectives, course.Prerequisites, course.Materials,
		course.Version, course.CreatedAt, course.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert course: %w", err)
	}
	return course, nil
}

// List returns courses matching the filter, newest start date first.
func (r *CourseRepository) List(ctx context.Context, f CourseFilter) ([]model.Course, error) {
	q := `SELECT ` + courseColumns + ` FROM courses WHERE status != 'deleted'`
	args := []any{}
	if !f.IncludeAllState {
		q += ` AND status = 'published'`
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		q += fmt.Sprintf(` AND (title ILIKE $%d OR description ILIKE $%d)`, len(args), len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		q += fmt.Sprintf(` AND $%d = ANY(categories)`, len(args))
	}
	if f.Language != "" {
		args = append(args, f.Language)
		q += fmt.Sprintf(` AND language = $%d`, len(args))
	}
	q += ` ORDER BY start_date ASC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// GetByID returns a single non-deleted course or ErrNotFound.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*model.Course, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1 AND status != 'deleted'`, id)
	c, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return c, nil
}

// Update writes the new course state, bumps the version, and records the
// field-level changes in the audit trail, all in one transaction.
func (r *CourseRepository) Update(ctx context.Context, course *model.Course, actor string, changes map[string]model.FieldChange) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	course.Version++
	course.UpdatedAt = time.Now().UTC()

	var tag pgconn.CommandTag
	tag, err = tx.Exec(ctx,
		`UPDATE courses SET
			slug = $2, title = $3, description = $4, thumbnail = $5, duration = $6,
			time_window = $7, start_date = $8, end_date = $9, price = $10,
			early_bird_price = $11, early_bird_deadline = $12, instructor = $13,
			total_capacity = $14, spots_available = $15, categories = $16,
			language = $17, skill_level = $18, status = $19,
			learning_objectives = $20, prerequisites = $21, materials = $22,
			version = $23, updated_at = $24
		 WHERE id = $1 AND status != 'deleted'`,
		course.ID, course.Slug, course.Title, course.Description, course.Thumbnail,
		course.Duration, course.Time, course.StartDate, course.EndDate, course.Price,
		course.EarlyBirdPrice, course.EarlyBirdDeadline, course.Instructor,
		course.TotalCapacity, course.SpotsAvailable, course.Categories,
		course.Language, course.SkillLevel, course.Status,
		course.LearningObjectives, course.Prerequisites, course.Materials,
		course.Version, course.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = ErrNotFound
		return err
	}

	if len(changes) > 0 {
		var payload []byte
		payload, err = json.Marshal(changes)
		if err != nil {
			return fmt.Errorf("marshal course changes: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO course_audit_logs (id, course_id, actor, changes, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			uuid.New().String(), course.ID, actor, payload, course.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert course audit log: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SoftDelete marks a course deleted. The row stays for the audit trail and
// for enrollments that reference it.
func (r *CourseRepository) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE courses SET status = 'deleted', updated_at = $2 WHERE id = $1 AND status != 'deleted'`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountEnrollments returns the current number of enrollment rows for a course.
func (r *CourseRepository) CountEnrollments(ctx context.Context, courseID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, courseID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return n, nil
}

func scanCourse(row pgx.Row) (*model.Course, error) {
	var c model.Course
	err := row.Scan(
		&c.ID, &c.Slug, &c.Title, &c.Description, &c.Thumbnail, &c.Duration, &c.Time,
		&c.StartDate, &c.EndDate, &c.Price, &c.EarlyBirdPrice, &c.EarlyBirdDeadline,
		&c.Instructor, &c.TotalCapacity, &c.SpotsAvailable, &c.Categories,
		&c.Language, &c.SkillLevel, &c.Status,
		&c.LearningObjectives, &c.Prerequisites, &c.Materials,
		&c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edutech-labs/course-booking/internal/model"
	"github.com/edutech-labs/course-booking/internal/repository"
	"github.com/edutech-labs/course-booking/internal/service"
)

// CatalogService lists and fetches publicly visible courses.
type CatalogService interface {
	ListPublished(ctx context.Context, query, category, language string) ([]model.Course, error)
	Get(ctx context.Context, id string) (*model.Course, error)
}

// BookingSubmitter runs the booking workflow and returns the confirmation number.
type BookingSubmitter interface {
	SubmitBooking(ctx context.Context, courseID string, req model.BookingRequest) (string, error)
}

// Directory serves the public team and category listings.
type Directory interface {
	ListTeam(ctx context.Context) ([]model.TeamMember, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

// PublicHandler serves the unauthenticated marketing site API.
type PublicHandler struct {
	catalog   CatalogService
	bookings  BookingSubmitter
	directory Directory
}

func NewPublicHandler(catalog CatalogService, bookings BookingSubmitter, directory Directory) *PublicHandler {
	return &PublicHandler{catalog: catalog, bookings: bookings, directory: directory}
}

// ListCourses handles GET /api/courses
func (h *PublicHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	courses, err := h.catalog.ListPublished(r.Context(), q.Get("q"), q.Get("category"), q.Get("language"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list courses")
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

// GetCourse handles GET /api/courses/{id}
func (h *PublicHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "course not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch course")
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// SubmitBooking handles POST /api/courses/{id}/book
func (h *PublicHandler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	var req model.BookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	code, err := h.bookings.SubmitBooking(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "course not found")
		case errors.Is(err, repository.ErrNoCapacity):
			writeError(w, http.StatusConflict, "not enough spots available")
		default:
			writeError(w, http.StatusInternalServerError, service.GenericBookingFailure)
		}
		return
	}
	writeJSON(w, http.StatusCreated, model.BookingResponse{ConfirmationNumber: code})
}

// ListCategories handles GET /api/categories
func (h *PublicHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.directory.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// ListTeam handles GET /api/team
func (h *PublicHandler) ListTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.directory.ListTeam(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list team members")
		return
	}
	writeJSON(w, http.StatusOK, team)
}

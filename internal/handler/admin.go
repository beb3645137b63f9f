package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/edutech-labs/course-booking/internal/model"
)

// CourseAdminService is the course management surface of the back office.
type CourseAdminService interface {
	ListAll(ctx context.Context) ([]model.Course, error)
	Get(ctx context.Context, id string) (*model.Course, error)
	Create(ctx context.Context, in model.CourseInput) (*model.Course, error)
	Update(ctx context.Context, id, actor string, in model.CourseInput) (*model.Course, error)
	Delete(ctx context.Context, id string) error
}

// BackOfficeService covers login, team, categories, attendees and email
// configuration.
type BackOfficeService interface {
	Login(ctx context.Context, email, password string) (string, error)

	ListTeam(ctx context.Context) ([]model.TeamMember, error)
	CreateTeamMember(ctx context.Context, in model.TeamMemberInput) (*model.TeamMember, error)
	UpdateTeamMember(ctx context.Context, id string, in model.TeamMemberInput) error
	DeleteTeamMember(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	RenameCategory(ctx context.Context, id, name string) error
	DeleteCategory(ctx context.Context, id string) error

	ListAttendees(ctx context.Context) ([]model.Attendee, error)
	ListCourseAttendees(ctx context.Context, courseID string) ([]model.Enrollment, error)
	SetPaymentStatus(ctx context.Context, id, status string) error
	DeleteAttendees(ctx context.Context, ids []string) (int, error)

	GetEmailConfig(ctx context.Context) (*model.EmailConfig, error)
	SaveEmailConfig(ctx context.Context, cfg model.EmailConfig) error
}

// AdminHandler serves the authenticated back-office API.
type AdminHandler struct {
	courses CourseAdminService
	office  BackOfficeService
}

func NewAdminHandler(courses CourseAdminService, office BackOfficeService) *AdminHandler {
	return &AdminHandler{courses: courses, office: office}
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, err := h.office.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ─── Courses ──────────────────────────────────────────────────────────────────

// ListCourses handles GET /api/admin/courses
func (h *AdminHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list courses")
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

// CreateCourse handles POST /api/admin/courses
func (h *AdminHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var in model.CourseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	course, err := h.courses.Create(r.Context(), in)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

// UpdateCourse handles PUT /api/admin/courses/{id}
func (h *AdminHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var in model.CourseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	course, err := h.courses.Update(r.Context(), chi.URLParam(r, "id"), adminEmail(r.Context()), in)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// DeleteCourse handles DELETE /api/admin/courses/{id}
func (h *AdminHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.courses.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "course deleted"})
}

// ─── Team ─────────────────────────────────────────────────────────────────────

// ListTeam handles GET /api/admin/team
func (h *AdminHandler) ListTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.office.ListTeam(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list team members")
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// CreateTeamMember handles POST /api/admin/team
func (h *AdminHandler) CreateTeamMember(w http.ResponseWriter, r *http.Request) {
	var in model.TeamMemberInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	member, err := h.office.CreateTeamMember(r.Context(), in)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

// UpdateTeamMember handles PUT /api/admin/team/{id}
func (h *AdminHandler) UpdateTeamMember(w http.ResponseWriter, r *http.Request) {
	var in model.TeamMemberInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.office.UpdateTeamMember(r.Context(), chi.URLParam(r, "id"), in); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "team member updated"})
}

// DeleteTeamMember handles DELETE /api/admin/team/{id}
func (h *AdminHandler) DeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	if err := h.office.DeleteTeamMember(r.Context(), chi.URLParam(r, "id")); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "team member deleted"})
}

// ─── Categories ───────────────────────────────────────────────────────────────

type categoryPayload struct {
	Name string `json:"name"`
}

// ListCategories handles GET /api/admin/categories
func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.office.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// CreateCategory handles POST /api/admin/categories
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var payload categoryPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	category, err := h.office.CreateCategory(r.Context(), payload.Name)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// RenameCategory handles PUT /api/admin/categories/{id}
func (h *AdminHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	var payload categoryPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.office.RenameCategory(r.Context(), chi.URLParam(r, "id"), payload.Name); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "category renamed"})
}

// DeleteCategory handles DELETE /api/admin/categories/{id}
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.office.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// ─── Attendees ────────────────────────────────────────────────────────────────

// ListAttendees handles GET /api/admin/attendees
func (h *AdminHandler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	if courseID := r.URL.Query().Get("course_id"); courseID != "" {
		attendees, err := h.office.ListCourseAttendees(r.Context(), courseID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list attendees")
			return
		}
		writeJSON(w, http.StatusOK, attendees)
		return
	}

	attendees, err := h.office.ListAttendees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list attendees")
		return
	}
	writeJSON(w, http.StatusOK, attendees)
}

type paymentStatusPayload struct {
	PaymentStatus string `json:"payment_status"`
}

// SetPaymentStatus handles PUT /api/admin/attendees/{id}/payment-status
func (h *AdminHandler) SetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	var payload paymentStatusPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.office.SetPaymentStatus(r.Context(), chi.URLParam(r, "id"), payload.PaymentStatus); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "payment status updated"})
}

// DeleteAttendee handles DELETE /api/admin/attendees/{id}
func (h *AdminHandler) DeleteAttendee(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.office.DeleteAttendees(r.Context(), []string{chi.URLParam(r, "id")})
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "attendee deleted", "deleted": deleted})
}

type bulkDeletePayload struct {
	IDs []string `json:"ids"`
}

// BulkDeleteAttendees handles POST /api/admin/attendees/bulk-delete
func (h *AdminHandler) BulkDeleteAttendees(w http.ResponseWriter, r *http.Request) {
	var payload bulkDeletePayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	deleted, err := h.office.DeleteAttendees(r.Context(), payload.IDs)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "attendees deleted", "deleted": deleted})
}

// ─── Email configuration ──────────────────────────────────────────────────────

// GetEmailConfig handles GET /api/admin/email-config
func (h *AdminHandler) GetEmailConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.office.GetEmailConfig(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// SaveEmailConfig handles PUT /api/admin/email-config
func (h *AdminHandler) SaveEmailConfig(w http.ResponseWriter, r *http.Request) {
	var cfg model.EmailConfig
	if err := decodeJSON(w, r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.office.SaveEmailConfig(r.Context(), cfg); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "email configuration saved"})
}

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/edutech-labs/course-booking/internal/auth"
	"github.com/edutech-labs/course-booking/internal/model"
	"github.com/edutech-labs/course-booking/internal/repository"
	"github.com/edutech-labs/course-booking/internal/service"
)

const testSecret = "test-secret"

// ─── Fakes ────────────────────────────────────────────────────────────────────

type fakeCourseAdmin struct {
	course    *model.Course
	err       error
	lastActor string
}

func (f *fakeCourseAdmin) ListAll(ctx context.Context) ([]model.Course, error) {
	if f.course == nil {
		return nil, f.err
	}
	return []model.Course{*f.course}, f.err
}

func (f *fakeCourseAdmin) Get(ctx context.Context, id string) (*model.Course, error) {
	return f.course, f.err
}

func (f *fakeCourseAdmin) Create(ctx context.Context, in model.CourseInput) (*model.Course, error) {
	return f.course, f.err
}

func (f *fakeCourseAdmin) Update(ctx context.Context, id, actor string, in model.CourseInput) (*model.Course, error) {
	f.lastActor = actor
	return f.course, f.err
}

func (f *fakeCourseAdmin) Delete(ctx context.Context, id string) error { return f.err }

type fakeBackOffice struct {
	token      string
	loginErr   error
	category   *model.Category
	catErr     error
	deletedIDs []string
}

func (f *fakeBackOffice) Login(ctx context.Context, email, password string) (string, error) {
	return f.token, f.loginErr
}

func (f *fakeBackOffice) ListTeam(ctx context.Context) ([]model.TeamMember, error) {
	return nil, nil
}

func (f *fakeBackOffice) CreateTeamMember(ctx context.Context, in model.TeamMemberInput) (*model.TeamMember, error) {
	return &model.TeamMember{ID: "t-1", Name: in.Name}, nil
}

func (f *fakeBackOffice) UpdateTeamMember(ctx context.Context, id string, in model.TeamMemberInput) error {
	return nil
}

func (f *fakeBackOffice) DeleteTeamMember(ctx context.Context, id string) error { return nil }

func (f *fakeBackOffice) ListCategories(ctx context.Context) ([]model.Category, error) {
	return nil, nil
}

func (f *fakeBackOffice) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	return f.category, f.catErr
}

func (f *fakeBackOffice) RenameCategory(ctx context.Context, id, name string) error { return f.catErr }
func (f *fakeBackOffice) DeleteCategory(ctx context.Context, id string) error       { return f.catErr }

func (f *fakeBackOffice) ListAttendees(ctx context.Context) ([]model.Attendee, error) {
	return nil, nil
}

func (f *fakeBackOffice) ListCourseAttendees(ctx context.Context, courseID string) ([]model.Enrollment, error) {
	return nil, nil
}

func (f *fakeBackOffice) SetPaymentStatus(ctx context.Context, id, status string) error { return nil }

func (f *fakeBackOffice) DeleteAttendees(ctx context.Context, ids []string) (int, error) {
	f.deletedIDs = ids
	return len(ids), nil
}

func (f *fakeBackOffice) GetEmailConfig(ctx context.Context) (*model.EmailConfig, error) {
	return &model.EmailConfig{Host: "smtp.example.com", Port: 587}, nil
}

func (f *fakeBackOffice) SaveEmailConfig(ctx context.Context, cfg model.EmailConfig) error {
	return nil
}

func adminRouter(courses *fakeCourseAdmin, office *fakeBackOffice) http.Handler {
	h := NewAdminHandler(courses, office)
	r := chi.NewRouter()
	r.Post("/api/admin/login", h.Login)
	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin(testSecret))
		r.Get("/api/admin/courses", h.ListCourses)
		r.Put("/api/admin/courses/{id}", h.UpdateCourse)
		r.Post("/api/admin/categories", h.CreateCategory)
		r.Post("/api/admin/attendees/bulk-delete", h.BulkDeleteAttendees)
	})
	return r
}

func authedRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken("a-1", "admin@edutech.example", testSecret)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestLoginReturnsToken(t *testing.T) {
	router := adminRouter(&fakeCourseAdmin{}, &fakeBackOffice{token: "jwt-token"})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login",
		strings.NewReader(`{"email": "admin@edutech.example", "password": "hunter2"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["token"] != "jwt-token" {
		t.Errorf("token = %q", resp["token"])
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := adminRouter(&fakeCourseAdmin{}, &fakeBackOffice{loginErr: service.ErrInvalidCredentials})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login",
		strings.NewReader(`{"email": "admin@edutech.example", "password": "wrong"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := adminRouter(&fakeCourseAdmin{}, &fakeBackOffice{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/courses", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/courses", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d, want 401", rec.Code)
	}
}

func TestProtectedRouteAcceptsValidToken(t *testing.T) {
	courses := &fakeCourseAdmin{course: &model.Course{ID: "c-1", Title: "Go Fundamentals"}}
	router := adminRouter(courses, &fakeBackOffice{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/admin/courses", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateCourseRecordsActorFromToken(t *testing.T) {
	courses := &fakeCourseAdmin{course: &model.Course{ID: "c-1"}}
	router := adminRouter(courses, &fakeBackOffice{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodPut, "/api/admin/courses/c-1",
		`{"title": "Go Fundamentals"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	if courses.lastActor != "admin@edutech.example" {
		t.Errorf("actor = %q, want token email", courses.lastActor)
	}
}

func TestCreateCategoryConflict(t *testing.T) {
	office := &fakeBackOffice{catErr: repository.ErrDuplicate}
	router := adminRouter(&fakeCourseAdmin{}, office)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/admin/categories",
		`{"name": "Cloud"}`))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestBulkDeleteAttendees(t *testing.T) {
	office := &fakeBackOffice{}
	router := adminRouter(&fakeCourseAdmin{}, office)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/admin/attendees/bulk-delete",
		`{"ids": ["e-1", "e-2", "e-3"]}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	if len(office.deletedIDs) != 3 {
		t.Errorf("deleted ids = %v", office.deletedIDs)
	}
	var resp map[string]any
	decodeBody(t, rec, &resp)
	if resp["deleted"] != float64(3) {
		t.Errorf("deleted = %v, want 3", resp["deleted"])
	}
}

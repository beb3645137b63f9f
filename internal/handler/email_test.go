package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edutech-labs/course-booking/internal/mail"
	"github.com/edutech-labs/course-booking/internal/model"
)

type fakeMailer struct {
	dispatchRes mail.DispatchResult
	verifyErr   error
	testErr     error
	dispatched  int
	sent        []model.TestEmailRequest
}

func (f *fakeMailer) DispatchBookingEmails(ctx context.Context, course *model.Course, booking model.BookingRequest, code string) mail.DispatchResult {
	f.dispatched++
	return f.dispatchRes
}

func (f *fakeMailer) VerifyConfig(ctx context.Context) error { return f.verifyErr }

func (f *fakeMailer) SendTest(ctx context.Context, req model.TestEmailRequest) error {
	f.sent = append(f.sent, req)
	return f.testErr
}

type fakeLogLister struct {
	logs []model.EmailLog
}

func (f *fakeLogLister) ListEmailLogs(ctx context.Context, limit int) ([]model.EmailLog, error) {
	return f.logs, nil
}

const bookingEmailsBody = `{
	"course": {"id": "c-1", "title": "Go Fundamentals", "price": 1200, "start_date": "2026-10-01T09:00:00Z"},
	"booking": {"tickets": 1, "full_name": "Anna Muster", "email": "anna@example.com"},
	"confirmation_number": "BKMF3K2A91XQ4T"
}`

func TestSendBookingEmailsSuccess(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewEmailHandler(mailer, &fakeLogLister{})

	req := httptest.NewRequest(http.MethodPost, "/api/emails/booking", strings.NewReader(bookingEmailsBody))
	rec := httptest.NewRecorder()
	h.SendBookingEmails(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if mailer.dispatched != 1 {
		t.Errorf("dispatched = %d, want 1", mailer.dispatched)
	}
	var resp map[string]any
	decodeBody(t, rec, &resp)
	if resp["success"] != true {
		t.Errorf("success = %v", resp["success"])
	}
}

func TestSendBookingEmailsMissingData(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewEmailHandler(mailer, &fakeLogLister{})

	req := httptest.NewRequest(http.MethodPost, "/api/emails/booking",
		strings.NewReader(`{"booking": {"email": "anna@example.com"}}`))
	rec := httptest.NewRecorder()
	h.SendBookingEmails(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if mailer.dispatched != 0 {
		t.Errorf("dispatched despite missing course")
	}
}

func TestSendBookingEmailsDispatchFailure(t *testing.T) {
	mailer := &fakeMailer{dispatchRes: mail.DispatchResult{
		Customer: mail.Classified{Kind: mail.KindAuth, Message: "Email authentication failed."},
	}}
	h := NewEmailHandler(mailer, &fakeLogLister{})

	req := httptest.NewRequest(http.MethodPost, "/api/emails/booking", strings.NewReader(bookingEmailsBody))
	rec := httptest.NewRecorder()
	h.SendBookingEmails(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp map[string]any
	decodeBody(t, rec, &resp)
	if resp["success"] != false {
		t.Errorf("success = %v, want false", resp["success"])
	}
	if resp["error"] == "" {
		t.Error("error message missing")
	}
}

func TestTestConfigOK(t *testing.T) {
	h := NewEmailHandler(&fakeMailer{}, &fakeLogLister{})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/email/test-config", nil)
	rec := httptest.NewRecorder()
	h.TestConfig(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]any
	decodeBody(t, rec, &resp)
	if resp["success"] != true {
		t.Errorf("success = %v", resp["success"])
	}
}

func TestTestConfigClassifiedEnvelope(t *testing.T) {
	h := NewEmailHandler(&fakeMailer{verifyErr: mail.Classified{
		Kind:    mail.KindAuth,
		Message: "Email authentication failed. Please check SMTP username and password.",
		Details: mail.Details{Code: "EAUTH", ResponseCode: 535},
	}}, &fakeLogLister{})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/email/test-config", nil)
	rec := httptest.NewRecorder()
	h.TestConfig(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp struct {
		Success bool         `json:"success"`
		Error   string       `json:"error"`
		Type    string       `json:"type"`
		Details mail.Details `json:"details"`
	}
	decodeBody(t, rec, &resp)
	if resp.Type != "auth" {
		t.Errorf("type = %q, want auth", resp.Type)
	}
	if resp.Details.Code != "EAUTH" || resp.Details.ResponseCode != 535 {
		t.Errorf("details = %+v", resp.Details)
	}
}

func TestTestConfigMissingConfigIs500(t *testing.T) {
	h := NewEmailHandler(&fakeMailer{verifyErr: mail.ErrNoConfig}, &fakeLogLister{})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/email/test-config", nil)
	rec := httptest.NewRecorder()
	h.TestConfig(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp struct {
		Type string `json:"type"`
	}
	decodeBody(t, rec, &resp)
	if resp.Type != "config" {
		t.Errorf("type = %q, want config", resp.Type)
	}
}

func TestTestEmailRequiresFields(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewEmailHandler(mailer, &fakeLogLister{})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/email/test",
		strings.NewReader(`{"to": "ops@example.com", "subject": ""}`))
	rec := httptest.NewRecorder()
	h.TestEmail(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("sent %d emails with incomplete payload", len(mailer.sent))
	}
}

func TestTestEmailSends(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewEmailHandler(mailer, &fakeLogLister{})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/email/test",
		strings.NewReader(`{"to": "ops@example.com", "subject": "ping", "text": "hello"}`))
	rec := httptest.NewRecorder()
	h.TestEmail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if len(mailer.sent) != 1 || mailer.sent[0].To != "ops@example.com" {
		t.Errorf("sent = %+v", mailer.sent)
	}
}

func TestSendBookingEmailsRejectsWrongMethod(t *testing.T) {
	h := NewEmailHandler(&fakeMailer{}, &fakeLogLister{})
	r := chi.NewRouter()
	r.Post("/api/emails/booking", h.SendBookingEmails)

	req := httptest.NewRequest(http.MethodGet, "/api/emails/booking", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestListLogs(t *testing.T) {
	lister := &fakeLogLister{logs: []model.EmailLog{
		{ID: "l-1", Kind: "auth", Code: "EAUTH", Context: "customer_confirmation", CreatedAt: time.Now()},
	}}
	h := NewEmailHandler(&fakeMailer{}, lister)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/email/logs?limit=10", nil)
	rec := httptest.NewRecorder()
	h.ListLogs(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var logs []model.EmailLog
	decodeBody(t, rec, &logs)
	if len(logs) != 1 || logs[0].Code != "EAUTH" {
		t.Errorf("logs = %+v", logs)
	}
}

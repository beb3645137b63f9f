package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/edutech-labs/course-booking/internal/mail"
	"github.com/edutech-labs/course-booking/internal/model"
)

// EmailSender is the slice of the mailer the HTTP layer needs.
type EmailSender interface {
	DispatchBookingEmails(ctx context.Context, course *model.Course, booking model.BookingRequest, code string) mail.DispatchResult
	VerifyConfig(ctx context.Context) error
	SendTest(ctx context.Context, req model.TestEmailRequest) error
}

// EmailLogLister reads back recorded delivery failures.
type EmailLogLister interface {
	ListEmailLogs(ctx context.Context, limit int) ([]model.EmailLog, error)
}

// EmailHandler serves the email dispatch and diagnostics endpoints.
type EmailHandler struct {
	mailer EmailSender
	logs   EmailLogLister
}

func NewEmailHandler(mailer EmailSender, logs EmailLogLister) *EmailHandler {
	return &EmailHandler{mailer: mailer, logs: logs}
}

type bookingEmailsPayload struct {
	Course             *model.Course        `json:"course"`
	Booking            model.BookingRequest `json:"booking"`
	ConfirmationNumber string               `json:"confirmation_number"`
}

// SendBookingEmails handles POST /api/emails/booking
func (h *EmailHandler) SendBookingEmails(w http.ResponseWriter, r *http.Request) {
	var payload bookingEmailsPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Course == nil || payload.Course.Title == "" ||
		payload.Booking.Email == "" || payload.ConfirmationNumber == "" {
		writeError(w, http.StatusBadRequest, "missing required booking data")
		return
	}

	res := h.mailer.DispatchBookingEmails(r.Context(), payload.Course, payload.Booking, payload.ConfirmationNumber)
	if err := res.Err(); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Emails sent successfully",
	})
}

// TestConfig handles POST /api/admin/email/test-config
//
// A passing handshake returns 200. Configuration problems are the
// operator's fault and come back as 500; everything else is a
// classified 400 so the back office can show what the server said.
func (h *EmailHandler) TestConfig(w http.ResponseWriter, r *http.Request) {
	err := h.mailer.VerifyConfig(r.Context())
	if err == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "SMTP configuration is valid and connection succeeded",
		})
		return
	}

	c := mail.Classify(err)
	status := http.StatusBadRequest
	if c.Kind == mail.KindConfig {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   c.Message,
		"type":    c.Kind,
		"details": c.Details,
	})
}

// TestEmail handles POST /api/admin/email/test
func (h *EmailHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	var req model.TestEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "to, subject and text are required")
		return
	}

	if err := h.mailer.SendTest(r.Context(), req); err != nil {
		c := mail.Classify(err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   c.Message,
			"type":    c.Kind,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Test email sent successfully",
	})
}

// ListLogs handles GET /api/admin/email/logs
func (h *EmailHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	logs, err := h.logs.ListEmailLogs(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list email logs")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// Package model defines the core domain types for the course booking platform.
package model

import "time"

// Course statuses. Deleted courses are kept as rows for audit purposes and
// excluded from every public query.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
	StatusArchived  = "archived"
	StatusDeleted   = "deleted"
)

// Payment statuses of an enrollment.
const (
	PaymentPaid    = "paid"
	PaymentPending = "pending"
	PaymentFailed  = "failed"
)

// Course represents one scheduled, priced, capacity-bounded run of a course.
type Course struct {
	ID                 string     `json:"id"`
	Slug               string     `json:"slug"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Thumbnail          string     `json:"thumbnail"`
	Duration           string     `json:"duration"`
	Time               string     `json:"time"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            time.Time  `json:"end_date"`
	Price              float64    `json:"price"`
	EarlyBirdPrice     *float64   `json:"early_bird_price,omitempty"`
	EarlyBirdDeadline  *time.Time `json:"early_bird_deadline,omitempty"`
	Instructor         string     `json:"instructor"`
	TotalCapacity      int        `json:"total_capacity"`
	SpotsAvailable     int        `json:"spots_available"`
	Categories         []string   `json:"categories"`
	Language           string     `json:"language"`
	SkillLevel         string     `json:"skill_level"`
	Status             string     `json:"status"`
	LearningObjectives []string   `json:"learning_objectives,omitempty"`
	Prerequisites      []string   `json:"prerequisites,omitempty"`
	Materials          []string   `json:"materials,omitempty"`
	Version            int        `json:"version"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Enrolled returns the number of spots already taken.
func (c *Course) Enrolled() int {
	return c.TotalCapacity - c.SpotsAvailable
}

// IsFull returns true when no spots remain.
func (c *Course) IsFull() bool {
	return c.SpotsAvailable <= 0
}

// BookingRequest is the form payload collected from an end user.
// It is never persisted as-is; the orchestrator turns it into one
// Enrollment row per ticket.
type BookingRequest struct {
	Tickets             int    `json:"tickets"`
	FullName            string `json:"full_name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	SpecialRequirements string `json:"special_requirements"`
}

// Enrollment is one ticket-holder's persisted registration against a course.
// A booking with N tickets produces N rows sharing one confirmation number.
type Enrollment struct {
	ID                  string    `json:"id"`
	CourseID            string    `json:"course_id"`
	FullName            string    `json:"full_name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
	SpecialRequirements string    `json:"special_requirements"`
	PaymentStatus       string    `json:"payment_status"`
	ConfirmationNumber  string    `json:"confirmation_number"`
	RegisteredAt        time.Time `json:"registered_at"`
}

// Attendee is an enrollment joined with its course title for the admin list.
type Attendee struct {
	Enrollment
	CourseTitle string `json:"course_title"`
}

// TeamMember is a trainer shown on the public team page and managed by admins.
type TeamMember struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Credentials string    `json:"credentials"`
	Expertise   []string  `json:"expertise"`
	Bio         string    `json:"bio"`
	Image       string    `json:"image"`
	LinkedIn    string    `json:"linkedin,omitempty"`
	Twitter     string    `json:"twitter,omitempty"`
	GitHub      string    `json:"github,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Category is a course category used for catalog filtering.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EmailConfig is the single stored SMTP transport configuration.
// It is fetched fresh on every send so credential changes take effect
// immediately (no in-process caching).
type EmailConfig struct {
	Host                  string    `json:"smtp_host"`
	Port                  int       `json:"smtp_port"`
	Secure                bool      `json:"smtp_secure"`
	TLSEnabled            bool      `json:"smtp_tls_enabled"`
	TLSMinVersion         string    `json:"smtp_tls_min_version"`
	TLSCiphers            string    `json:"smtp_tls_ciphers"`
	TLSRejectUnauthorized bool      `json:"smtp_tls_reject_unauthorized"`
	Username              string    `json:"smtp_user"`
	Password              string    `json:"smtp_password,omitempty"`
	FromEmail             string    `json:"from_email"`
	FromName              string    `json:"from_name"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// EmailLog is one classified delivery failure written to the audit log.
type EmailLog struct {
	ID           string    `json:"id"`
	Kind         string    `json:"error_type"`
	Message      string    `json:"error_message"`
	Code         string    `json:"code"`
	Command      string    `json:"command,omitempty"`
	ResponseCode int       `json:"response_code,omitempty"`
	Response     string    `json:"response,omitempty"`
	Context      string    `json:"context"`
	CreatedAt    time.Time `json:"created_at"`
}

// FieldChange records one field's old and new value in a course audit entry.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// CourseInput is the admin payload for creating or updating a course.
type CourseInput struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Thumbnail          string     `json:"thumbnail"`
	Duration           string     `json:"duration"`
	Time               string     `json:"time"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            time.Time  `json:"end_date"`
	Price              float64    `json:"price"`
	EarlyBirdPrice     *float64   `json:"early_bird_price"`
	EarlyBirdDeadline  *time.Time `json:"early_bird_deadline"`
	Instructor         string     `json:"instructor"`
	TotalCapacity      int        `json:"total_capacity"`
	Categories         []string   `json:"categories"`
	Language           string     `json:"language"`
	SkillLevel         string     `json:"skill_level"`
	Status             string     `json:"status"`
	LearningObjectives []string   `json:"learning_objectives"`
	Prerequisites      []string   `json:"prerequisites"`
	Materials          []string   `json:"materials"`
}

// TeamMemberInput is the admin payload for creating or updating a team member.
type TeamMemberInput struct {
	Name        string   `json:"name"`
	Credentials string   `json:"credentials"`
	Expertise   []string `json:"expertise"`
	Bio         string   `json:"bio"`
	Image       string   `json:"image"`
	LinkedIn    string   `json:"linkedin"`
	Twitter     string   `json:"twitter"`
	GitHub      string   `json:"github"`
}

// LoginRequest is the admin login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TestEmailRequest is the payload of the generic test-email endpoint.
type TestEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html,omitempty"`
}

// BookingResponse is returned on a successful booking.
type BookingResponse struct {
	ConfirmationNumber string `json:"confirmation_number"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

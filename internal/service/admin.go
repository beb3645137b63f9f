package service

import (
	"context"
	"errors"
	"strings"

	"github.com/edutech-labs/course-booking/internal/auth"
	"github.com/edutech-labs/course-booking/internal/model"
	"github.com/edutech-labs/course-booking/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login. Deliberately the
// same for unknown email and wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AdminAccounts reads back-office accounts.
type AdminAccounts interface {
	GetByEmail(ctx context.Context, email string) (*repository.Admin, error)
}

// TeamStore is the persistence surface for team members.
type TeamStore interface {
	Create(ctx context.Context, in model.TeamMemberInput) (*model.TeamMember, error)
	List(ctx context.Context) ([]model.TeamMember, error)
	Update(ctx context.Context, id string, in model.TeamMemberInput) error
	Delete(ctx context.Context, id string) error
}

// CategoryStore is the persistence surface for categories.
type CategoryStore interface {
	Create(ctx context.Context, name string) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

// AttendeeStore is the persistence surface for enrollment administration.
type AttendeeStore interface {
	ListAttendees(ctx context.Context) ([]model.Attendee, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Enrollment, error)
	UpdatePaymentStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, ids []string) (int, error)
}

// EmailConfigStore is the persistence surface for the SMTP configuration.
type EmailConfigStore interface {
	GetEmailConfig(ctx context.Context) (*model.EmailConfig, error)
	UpsertEmailConfig(ctx context.Context, cfg model.EmailConfig) error
}

// AdminService implements the back-office operations: login, team and
// category management, attendee administration and the SMTP configuration.
type AdminService struct {
	accounts   AdminAccounts
	team       TeamStore
	categories CategoryStore
	attendees  AttendeeStore
	emailCfg   EmailConfigStore
	jwtSecret  string
}

// NewAdminService constructs an AdminService with its dependencies.
func NewAdminService(accounts AdminAccounts, team TeamStore, categories CategoryStore, attendees AttendeeStore, emailCfg EmailConfigStore, jwtSecret string) *AdminService {
	return &AdminService{
		accounts:   accounts,
		team:       team,
		categories: categories,
		attendees:  attendees,
		emailCfg:   emailCfg,
		jwtSecret:  jwtSecret,
	}
}

// Login verifies credentials and returns a session token.
func (s *AdminService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	admin, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return auth.GenerateToken(admin.ID, admin.Email, s.jwtSecret)
}

// ── Team members ──────────────────────────────────────────────────────────

// ListTeam returns all team members.
func (s *AdminService) ListTeam(ctx context.Context) ([]model.TeamMember, error) {
	return s.team.List(ctx)
}

// CreateTeamMember validates and inserts a team member.
func (s *AdminService) CreateTeamMember(ctx context.Context, in model.TeamMemberInput) (*model.TeamMember, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, invalid("name", "name is required")
	}
	return s.team.Create(ctx, in)
}

// UpdateTeamMember validates and applies a team member update.
func (s *AdminService) UpdateTeamMember(ctx context.Context, id string, in model.TeamMemberInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name", "name is required")
	}
	return s.team.Update(ctx, id, in)
}

// DeleteTeamMember removes a team member.
func (s *AdminService) DeleteTeamMember(ctx context.Context, id string) error {
	return s.team.Delete(ctx, id)
}

// ── Categories ────────────────────────────────────────────────────────────

// ListCategories returns all categories.
func (s *AdminService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categories.List(ctx)
}

// CreateCategory validates and inserts a category.
func (s *AdminService) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "category name is required")
	}
	return s.categories.Create(ctx, name)
}

// RenameCategory validates and renames a category.
func (s *AdminService) RenameCategory(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name", "category name is required")
	}
	return s.categories.Rename(ctx, id, name)
}

// DeleteCategory removes a category.
func (s *AdminService) DeleteCategory(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, id)
}

// ── Attendees ─────────────────────────────────────────────────────────────

// ListAttendees returns all enrollments with their course titles.
func (s *AdminService) ListAttendees(ctx context.Context) ([]model.Attendee, error) {
	return s.attendees.ListAttendees(ctx)
}

// ListCourseAttendees returns one course's enrollments.
func (s *AdminService) ListCourseAttendees(ctx context.Context, courseID string) ([]model.Enrollment, error) {
	return s.attendees.ListByCourse(ctx, courseID)
}

// SetPaymentStatus updates one enrollment's payment status.
func (s *AdminService) SetPaymentStatus(ctx context.Context, id, status string) error {
	switch status {
	case model.PaymentPaid, model.PaymentPending, model.PaymentFailed:
	default:
		return invalid("payment_status", "payment status must be paid, pending or failed")
	}
	return s.attendees.UpdatePaymentStatus(ctx, id, status)
}

// DeleteAttendees removes enrollments and returns the freed spots to their
// courses. Returns the number of rows deleted.
func (s *AdminService) DeleteAttendees(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, invalid("ids", "at least one attendee id is required")
	}
	return s.attendees.Delete(ctx, ids)
}

// ── Email configuration ───────────────────────────────────────────────────

// GetEmailConfig returns the stored SMTP configuration with the password
// blanked; it is write-only through the API.
func (s *AdminService) GetEmailConfig(ctx context.Context) (*model.EmailConfig, error) {
	cfg, err := s.emailCfg.GetEmailConfig(ctx)
	if err != nil {
		return nil, err
	}
	cfg.Password = ""
	return cfg, nil
}

// SaveEmailConfig validates and upserts the SMTP configuration.
func (s *AdminService) SaveEmailConfig(ctx context.Context, cfg model.EmailConfig) error {
	cfg.Host = strings.TrimSpace(cfg.Host)
	if cfg.Host == "" {
		return invalid("smtp_host", "SMTP host is required")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return invalid("smtp_port", "SMTP port must be between 1 and 65535")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return invalid("from_email", "from email is required")
	}
	if !emailPattern.MatchString(cfg.FromEmail) {
		return invalid("from_email", "from email is not a valid address")
	}
	if cfg.TLSMinVersion == "" {
		cfg.TLSMinVersion = "TLSv1.2"
	}
	return s.emailCfg.UpsertEmailConfig(ctx, cfg)
}

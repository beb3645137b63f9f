// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository and mail layers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/edutech-labs/course-booking/internal/confirmation"
	"github.com/edutech-labs/course-booking/internal/mail"
	"github.com/edutech-labs/course-booking/internal/model"
	"github.com/edutech-labs/course-booking/internal/repository"
)

// GenericBookingFailure is the only failure wording end users ever see for
// a booking that could not be processed. The classified detail stays in the
// audit log.
const GenericBookingFailure = "Failed to process booking. Please try again or contact support."

// ErrBookingFailed signals a booking that failed after validation passed.
var ErrBookingFailed = errors.New("booking failed")

// ValidationError is a rejected-input error. Handlers map it to 400 and may
// show the message to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s-]{8,}$`)
)

// CourseGetter loads a single course.
type CourseGetter interface {
	GetByID(ctx context.Context, id string) (*model.Course, error)
}

// EnrollmentBooker atomically claims spots and inserts enrollment rows.
type EnrollmentBooker interface {
	BookTickets(ctx context.Context, courseID string, req model.BookingRequest, confirmationNumber string) ([]model.Enrollment, error)
}

// Dispatcher sends the two booking notifications.
type Dispatcher interface {
	DispatchBookingEmails(ctx context.Context, course *model.Course, booking model.BookingRequest, code string) mail.DispatchResult
}

// BookingService orchestrates the booking workflow: validate, issue a
// confirmation number, dispatch both emails, persist enrollments.
type BookingService struct {
	courses     CourseGetter
	enrollments EnrollmentBooker
	mailer      Dispatcher
}

// NewBookingService constructs a BookingService with its dependencies.
func NewBookingService(courses CourseGetter, enrollments EnrollmentBooker, mailer Dispatcher) *BookingService {
	return &BookingService{courses: courses, enrollments: enrollments, mailer: mailer}
}

// SubmitBooking runs the full booking workflow and returns the confirmation
// number shared by the created enrollment rows.
//
// Ordering is strict: both emails must have been sent before any row is
// written, so a dispatch failure leaves the database untouched. The inverse
// does not hold — if persistence fails after the emails went out, the
// customer holds a confirmation for a booking that was never recorded. No
// compensating email is sent; the orphaned confirmation number is logged so
// an operator can follow up.
//
// Resubmitting the same form is not deduplicated: it produces a fresh
// confirmation number and a fresh set of rows.
func (s *BookingService) SubmitBooking(ctx context.Context, courseID string, req model.BookingRequest) (string, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return "", err
	}
	if err := validateBooking(course, req); err != nil {
		return "", err
	}

	code := confirmation.NewNumber()

	if err := s.mailer.DispatchBookingEmails(ctx, course, req, code).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBookingFailed, err)
	}

	if _, err := s.enrollments.BookTickets(ctx, course.ID, req, code); err != nil {
		if errors.Is(err, repository.ErrNoCapacity) {
			// Lost the capacity race between validation and persistence.
			// The confirmation emails are already out; flag the orphan.
			log.Printf("booking: capacity exhausted after emails sent, confirmation %s orphaned (course %s)", code, course.ID)
			return "", err
		}
		log.Printf("booking: persistence failed after emails sent, confirmation %s orphaned (course %s): %v", code, course.ID, err)
		return "", fmt.Errorf("%w: %v", ErrBookingFailed, err)
	}

	return code, nil
}

// validateBooking reproduces the client-side form rules server-side, so the
// contract holds without trusting the UI. Everything here rejects before
// any network call is made.
func validateBooking(course *model.Course, req model.BookingRequest) error {
	if req.Tickets < 1 {
		return invalid("tickets", "please select at least 1 ticket")
	}
	if req.Tickets > course.SpotsAvailable {
		return fmt.Errorf("%w: only %d spots available", repository.ErrNoCapacity, course.SpotsAvailable)
	}
	if strings.TrimSpace(req.FullName) == "" {
		return invalid("full_name", "full name is required")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return invalid("email", "email is required")
	}
	if !emailPattern.MatchString(email) {
		return invalid("email", "please enter a valid email address")
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" && !phonePattern.MatchString(phone) {
		return invalid("phone", "please enter a valid phone number")
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/edutech-labs/course-booking/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnrollmentRepository handles persistence for enrollments and owns the
// capacity ledger on the course row.
type EnrollmentRepository struct {
	db *pgxpool.Pool
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// BookTickets atomically claims n spots and inserts one enrollment row per
// ticket, all sharing the given confirmation number.
//
// The capacity check and decrement are a single conditional UPDATE rather
// than a read-then-write: two concurrent bookings can both pre-read enough
// spots, but only the UPDATE's row condition decides who actually gets them.
// Zero rows affected means the course is gone or the spots are, and nothing
// is inserted.
func (r *EnrollmentRepository) BookTickets(ctx context.Context, courseID string, req model.BookingRequest, confirmationNumber string) ([]model.Enrollment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var tag pgconn.CommandTag
	tag, err = tx.Exec(ctx,
		`UPDATE courses
		 SET spots_available = spots_available - $2, updated_at = $3
		 WHERE id = $1 AND status = 'published' AND spots_available >= $2`,
		courseID, req.Tickets, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("claim spots: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM courses WHERE id = $1 AND status = 'published')`,
			courseID,
		).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check course: %w", err)
		}
		if !exists {
			err = ErrNotFound
		} else {
			err = ErrNoCapacity
		}
		return nil, err
	}

	now := time.Now().UTC()
	enrollments := make([]model.Enrollment, req.Tickets)
	batch := &pgx.Batch{}
	for i := range enrollments {
		enrollments[i] = model.Enrollment{
			ID:                  uuid.New().String(),
			CourseID:            courseID,
			FullName:            req.FullName,
			Email:               req.Email,
			Phone:               req.Phone,
			SpecialRequirements: req.SpecialRequirements,
			PaymentStatus:       model.PaymentPending,
			ConfirmationNumber:  confirmationNumber,
			RegisteredAt:        now,
		}
		e := enrollments[i]
		batch.Queue(
			`INSERT INTO enrollments (id, course_id, full_name, email, phone,
			    special_requirements, payment_status, confirmation_number, registered_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, e.CourseID, e.FullName, e.Email, e.Phone,
			e.SpecialRequirements, e.PaymentStatus, e.ConfirmationNumber, e.RegisteredAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range enrollments {
		if _, err = br.Exec(); err != nil {
			_ = br.Close()
			return nil, fmt.Errorf("insert enrollment: %w", err)
		}
	}
	if err = br.Close(); err != nil {
		return nil, fmt.Errorf("close batch: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return enrollments, nil
}

// ListAttendees returns all enrollments joined with their course title,
// newest first. Used by the admin attendee list.
func (r *EnrollmentRepository) ListAttendees(ctx context.Context) ([]model.Attendee, error) {
	rows, err := r.db.Query(ctx,
		`SELECT e.id, e.course_id, e.full_name, e.email, e.phone,
		        e.special_requirements, e.payment_status, e.confirmation_number,
		        e.registered_at, c.title
		 FROM enrollments e
		 JOIN courses c ON c.id = e.course_id
		 ORDER BY e.registered_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()

	var attendees []model.Attendee
	for rows.Next() {
		var a model.Attendee
		if err := rows.Scan(
			&a.ID, &a.CourseID, &a.FullName, &a.Email, &a.Phone,
			&a.SpecialRequirements, &a.PaymentStatus, &a.ConfirmationNumber,
			&a.RegisteredAt, &a.CourseTitle,
		); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

// ListByCourse returns a course's enrollments in registration order.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]model.Enrollment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, course_id, full_name, email, phone, special_requirements,
		        payment_status, confirmation_number, registered_at
		 FROM enrollments
		 WHERE course_id = $1
		 ORDER BY registered_at ASC`,
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(
			&e.ID, &e.CourseID, &e.FullName, &e.Email, &e.Phone,
			&e.SpecialRequirements, &e.PaymentStatus, &e.ConfirmationNumber,
			&e.RegisteredAt,
		); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

// UpdatePaymentStatus sets one enrollment's payment status.
func (r *EnrollmentRepository) UpdatePaymentStatus(ctx context.Context, id, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE enrollments SET payment_status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes enrollments by ID and returns freed spots to their courses
// in the same transaction. Returns the number of rows deleted.
func (r *EnrollmentRepository) Delete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var rows pgx.Rows
	rows, err = tx.Query(ctx,
		`DELETE FROM enrollments WHERE id = ANY($1) RETURNING course_id`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete enrollments: %w", err)
	}
	freed := make(map[string]int)
	for rows.Next() {
		var courseID string
		if err = rows.Scan(&courseID); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan deleted enrollment: %w", err)
		}
		freed[courseID]++
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return 0, fmt.Errorf("delete enrollments: %w", err)
	}

	deleted := 0
	for courseID, n := range freed {
		deleted += n
		// LEAST keeps the ledger inside 0..total_capacity even if capacity
		// was lowered after these enrollments were created.
		_, err = tx.Exec(ctx,
			`UPDATE courses
			 SET spots_available = LEAST(spots_available + $2, total_capacity)
			 WHERE id = $1`,
			courseID, n,
		)
		if err != nil {
			return 0, fmt.Errorf("return spots: %w", err)
		}
	}
	if deleted == 0 {
		err = ErrNotFound
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return deleted, nil
}

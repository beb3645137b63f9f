package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Admin is a back-office account. Only the fields the login flow needs are
// ever read.
type Admin struct {
	ID           string
	Email        string
	PasswordHash string
}

// AdminRepository reads back-office accounts.
type AdminRepository struct {
	db *pgxpool.Pool
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

// GetByEmail returns the admin account for an email address, or ErrNotFound.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	var a Admin
	err := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash FROM admins WHERE email = $1`, email,
	).Scan(&a.ID, &a.Email, &a.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &a, nil
}

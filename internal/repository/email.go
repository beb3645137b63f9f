package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edutech-labs/course-booking/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The SMTP configuration is one logical row; a fixed key keeps the upsert
// honest.
const emailConfigID = 1

// EmailRepository stores the SMTP configuration and the delivery failure log.
type EmailRepository struct {
	db *pgxpool.Pool
}

// NewEmailRepository constructs an EmailRepository.
func NewEmailRepository(db *pgxpool.Pool) *EmailRepository {
	return &EmailRepository{db: db}
}

// GetEmailConfig reads the stored SMTP configuration, or ErrNotFound if it
// has never been saved.
func (r *EmailRepository) GetEmailConfig(ctx context.Context) (*model.EmailConfig, error) {
	var cfg model.EmailConfig
	err := r.db.QueryRow(ctx,
		`SELECT smtp_host, smtp_port, smtp_secure, smtp_tls_enabled,
		        smtp_tls_min_version, smtp_tls_ciphers, smtp_tls_reject_unauthorized,
		        smtp_user, smtp_password, from_email, from_name, updated_at
		 FROM email_config WHERE id = $1`,
		emailConfigID,
	).Scan(
		&cfg.Host, &cfg.Port, &cfg.Secure, &cfg.TLSEnabled,
		&cfg.TLSMinVersion, &cfg.TLSCiphers, &cfg.TLSRejectUnauthorized,
		&cfg.Username, &cfg.Password, &cfg.FromEmail, &cfg.FromName, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get email config: %w", err)
	}
	return &cfg, nil
}

// UpsertEmailConfig writes the single configuration row. A blank incoming
// password keeps the stored one, so the admin UI never has to echo it back.
func (r *EmailRepository) UpsertEmailConfig(ctx context.Context, cfg model.EmailConfig) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO email_config (id, smtp_host, smtp_port, smtp_secure,
		    smtp_tls_enabled, smtp_tls_min_version, smtp_tls_ciphers,
		    smtp_tls_reject_unauthorized, smtp_user, smtp_password,
		    from_email, from_name, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (id) DO UPDATE SET
		    smtp_host = EXCLUDED.smtp_host,
		    smtp_port = EXCLUDED.smtp_port,
		    smtp_secure = EXCLUDED.smtp_secure,
		    smtp_tls_enabled = EXCLUDED.smtp_tls_enabled,
		    smtp_tls_min_version = EXCLUDED.smtp_tls_min_version,
		    smtp_tls_ciphers = EXCLUDED.smtp_tls_ciphers,
		    smtp_tls_reject_unauthorized = EXCLUDED.smtp_tls_reject_unauthorized,
		    smtp_user = EXCLUDED.smtp_user,
		    smtp_password = COALESCE(NULLIF(EXCLUDED.smtp_password, ''), email_config.smtp_password),
		    from_email = EXCLUDED.from_email,
		    from_name = EXCLUDED.from_name,
		    updated_at = EXCLUDED.updated_at`,
		emailConfigID, cfg.Host, cfg.Port, cfg.Secure,
		cfg.TLSEnabled, cfg.TLSMinVersion, cfg.TLSCiphers,
		cfg.TLSRejectUnauthorized, cfg.Username, cfg.Password,
		cfg.FromEmail, cfg.FromName, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert email config: %w", err)
	}
	return nil
}

// InsertEmailLog appends one classified delivery failure to the audit log.
func (r *EmailRepository) InsertEmailLog(ctx context.Context, entry model.EmailLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO email_logs (id, error_type, error_message, code, command,
		    response_code, response, context, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New().String(), entry.Kind, entry.Message, entry.Code, entry.Command,
		entry.ResponseCode, entry.Response, entry.Context, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert email log: %w", err)
	}
	return nil
}

// ListEmailLogs returns the most recent delivery failures for the admin
// testing page.
func (r *EmailRepository) ListEmailLogs(ctx context.Context, limit int) ([]model.EmailLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, error_type, error_message, code, command, response_code,
		        response, context, created_at
		 FROM email_logs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list email logs: %w", err)
	}
	defer rows.Close()

	var logs []model.EmailLog
	for rows.Next() {
		var e model.EmailLog
		if err := rows.Scan(&e.ID, &e.Kind, &e.Message, &e.Code, &e.Command,
			&e.ResponseCode, &e.Response, &e.Context, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan email log: %w", err)
		}
		logs = append(logs, e)
	}
	return logs, rows.Err()
}

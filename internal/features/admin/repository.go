// Package admin — repository.go works with the admin_sessions and
// admin_login_attempts tables.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository works with the admin tables.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates an admin repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateSession stores a new admin session.
func (r *Repository) CreateSession(ctx context.Context, s *Session) error {
	query := `
		INSERT INTO admin_sessions (user_id, session_token, expires_at, is_active)
		VALUES ($1, $2, $3, TRUE)
	`
	if _, err := r.db.Exec(ctx, query, s.UserID, s.SessionToken, s.ExpiresAt); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// HasActiveSession reports whether the user holds an unexpired session.
func (r *Repository) HasActiveSession(ctx context.Context, userID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM admin_sessions
			WHERE user_id = $1 AND is_active = TRUE AND expires_at > NOW()
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check session: %w", err)
	}
	return exists, nil
}

// LogAttempt records one login attempt.
func (r *Repository) LogAttempt(ctx context.Context, userID int64, success bool) error {
	query := `INSERT INTO admin_login_attempts (user_id, success) VALUES ($1, $2)`
	if _, err := r.db.Exec(ctx, query, userID, success); err != nil {
		return fmt.Errorf("log attempt: %w", err)
	}
	return nil
}

// RecentFailedAttempts counts failed logins by the user within the window.
func (r *Repository) RecentFailedAttempts(ctx context.Context, userID int64, window time.Duration) (int, error) {
	query := `
		SELECT COUNT(*) FROM admin_login_attempts
		WHERE user_id = $1 AND success = FALSE AND attempt_time > $2
	`
	var count int
	since := time.Now().Add(-window)
	if err := r.db.QueryRow(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return count, nil
}

// Package members — repository.go runs the queries against the members table.
package members

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Upsert inserts the member or refreshes name fields on conflict.
func (r *Repository) Upsert(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO members (user_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, m.UserID, m.Username, m.FirstName, m.LastName)
	if err != nil {
		return fmt.Errorf("upsert member: %w", err)
	}
	return nil
}

// GetByUserID returns the member; errors.Is(err, pgx.ErrNoRows) when unknown.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	query := `
		SELECT id, user_id, COALESCE(username, ''), first_name, COALESCE(last_name, ''),
		       created_at, updated_at
		FROM members
		WHERE user_id = $1
	`
	var m Member
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&m.ID, &m.UserID, &m.Username, &m.FirstName, &m.LastName,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("member not found (user_id=%d): %w", userID, err)
		}
		return nil, fmt.Errorf("read member (user_id=%d): %w", userID, err)
	}
	return &m, nil
}

// GetByUsername looks a member up by @username, case-insensitively.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*Member, error) {
	query := `
		SELECT id, user_id, COALESCE(username, ''), first_name, COALESCE(last_name, ''),
		       created_at, updated_at
		FROM members
		WHERE LOWER(username) = LOWER($1)
	`
	var m Member
	err := r.db.QueryRow(ctx, query, username).Scan(
		&m.ID, &m.UserID, &m.Username, &m.FirstName, &m.LastName,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("member not found (username=%s): %w", username, err)
		}
		return nil, fmt.Errorf("read member (username=%s): %w", username, err)
	}
	return &m, nil
}

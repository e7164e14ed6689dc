// Package karma — repository.go is the ledger store on top of the karma and
// karma_history tables. A point mutation and its history entry are written in
// one database transaction: both happen or neither does.
package karma

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository works with the karma and karma_history tables.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a karma repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Get returns the record for (user, guild). A missing record is not an
// error: a zero-value record is returned instead.
func (r *Repository) Get(ctx context.Context, userID, guildID int64) (*Record, error) {
	query := `
		SELECT karma, last_updated FROM karma
		WHERE user_id = $1 AND guild_id = $2
	`
	rec := Record{UserID: userID, GuildID: guildID}
	err := r.db.QueryRow(ctx, query, userID, guildID).Scan(&rec.Points, &rec.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return &rec, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get karma: %w", err)
	}
	return &rec, nil
}

// ApplyDelta atomically adds delta to the record (creating it at delta when
// absent), stamps last_updated, and appends one history event with the same
// delta and reason. Returns the new total.
//
// The increment is a single SQL statement, so concurrent deltas for the same
// pair serialize on the row and never lose updates.
func (r *Repository) ApplyDelta(ctx context.Context, userID, guildID int64, delta int, reason string) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var newPoints int
	err = tx.QueryRow(ctx, `
		INSERT INTO karma (user_id, guild_id, karma, last_updated)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, guild_id) DO UPDATE SET
			karma = karma.karma + EXCLUDED.karma,
			last_updated = EXCLUDED.last_updated
		RETURNING karma
	`, userID, guildID, delta).Scan(&newPoints)
	if err != nil {
		return 0, fmt.Errorf("apply karma delta: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO karma_history (user_id, guild_id, change, reason)
		VALUES ($1, $2, $3, NULLIF($4, ''))
	`, userID, guildID, delta, reason)
	if err != nil {
		return 0, fmt.Errorf("append karma event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return newPoints, nil
}

// Set overwrites the record's total with value and logs the difference as one
// history event. The current row is locked for the duration, so the computed
// delta cannot race with a concurrent ApplyDelta.
func (r *Repository) Set(ctx context.Context, userID, guildID int64, value int, reason string) (delta, newPoints int, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current int
	err = tx.QueryRow(ctx, `
		SELECT karma FROM karma
		WHERE user_id = $1 AND guild_id = $2
		FOR UPDATE
	`, userID, guildID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		current = 0
		_, err = tx.Exec(ctx, `
			INSERT INTO karma (user_id, guild_id, karma, last_updated)
			VALUES ($1, $2, $3, NOW())
		`, userID, guildID, value)
	} else if err == nil {
		_, err = tx.Exec(ctx, `
			UPDATE karma SET karma = $3, last_updated = NOW()
			WHERE user_id = $1 AND guild_id = $2
		`, userID, guildID, value)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("set karma: %w", err)
	}

	delta = value - current
	_, err = tx.Exec(ctx, `
		INSERT INTO karma_history (user_id, guild_id, change, reason)
		VALUES ($1, $2, $3, NULLIF($4, ''))
	`, userID, guildID, delta, reason)
	if err != nil {
		return 0, 0, fmt.Errorf("append karma event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit: %w", err)
	}
	return delta, value, nil
}

// Leaderboard returns up to limit records for the guild, points descending.
// Ties break by user_id ascending so the ordering is deterministic.
func (r *Repository) Leaderboard(ctx context.Context, guildID int64, limit int) ([]LeaderboardEntry, error) {
	query := `
		SELECT user_id, karma FROM karma
		WHERE guild_id = $1
		ORDER BY karma DESC, user_id ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Points); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read leaderboard rows: %w", err)
	}
	return entries, nil
}

// History returns up to limit events for (user, guild), most recent first.
func (r *Repository) History(ctx context.Context, userID, guildID int64, limit int) ([]Event, error) {
	query := `
		SELECT id, user_id, guild_id, change, COALESCE(reason, ''), timestamp
		FROM karma_history
		WHERE user_id = $1 AND guild_id = $2
		ORDER BY timestamp DESC, id DESC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, userID, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.UserID, &e.GuildID, &e.Change, &e.Reason, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history rows: %w", err)
	}
	return events, nil
}

// PurgeEventsBefore deletes history events older than cutoff and returns how
// many were removed. Record totals are never touched.
func (r *Repository) PurgeEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM karma_history WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge karma events: %w", err)
	}
	return tag.RowsAffected(), nil
}

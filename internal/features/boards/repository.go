// Package boards — repository.go runs the queries against kudo_boards.
package boards

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository works with the kudo_boards table.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a board repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Upsert creates the board or replaces the existing one for the channel.
func (r *Repository) Upsert(ctx context.Context, b *Board) error {
	query := `
		INSERT INTO kudo_boards (channel_id, guild_id, min_karma)
		VALUES ($1, $2, $3)
		ON CONFLICT (channel_id) DO UPDATE SET
			guild_id = EXCLUDED.guild_id,
			min_karma = EXCLUDED.min_karma
	`
	_, err := r.db.Exec(ctx, query, b.ChannelID, b.GuildID, b.MinKarma)
	if err != nil {
		return fmt.Errorf("upsert kudo board: %w", err)
	}
	return nil
}

// Get returns the board for the channel, or nil when the channel has none.
func (r *Repository) Get(ctx context.Context, channelID int64) (*Board, error) {
	query := `SELECT channel_id, guild_id, min_karma FROM kudo_boards WHERE channel_id = $1`
	var b Board
	err := r.db.QueryRow(ctx, query, channelID).Scan(&b.ChannelID, &b.GuildID, &b.MinKarma)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get kudo board: %w", err)
	}
	return &b, nil
}

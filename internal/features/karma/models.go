// Package karma implements the reputation system: the points ledger, the
// cooldown gate, leveling, and the operations composed from them.
// models.go describes the stored records and the result DTOs.
package karma

import "time"

// Record is the current karma total of one user in one guild (group chat).
// Exactly one row per (user_id, guild_id); created on first change, never
// deleted.
type Record struct {
	UserID      int64     `db:"user_id"`
	GuildID     int64     `db:"guild_id"`
	Points      int       `db:"karma"`
	LastUpdated time.Time `db:"last_updated"`
}

// Event is one append-only history entry. Events are purged after the
// retention window; the Record total is the source of truth, the log is a
// diagnostic trail.
type Event struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	GuildID   int64     `db:"guild_id"`
	Change    int       `db:"change"`
	Reason    string    `db:"reason"`
	Timestamp time.Time `db:"timestamp"`
}

// LeaderboardEntry is one row of the guild leaderboard.
type LeaderboardEntry struct {
	UserID int64
	Points int
	// Level is annotated by the service, not stored.
	Level int
}

// Result is returned by Give, Remove and ReactionGrant.
type Result struct {
	NewPoints int
	Level     int
	// LeveledUp is set by ReactionGrant when the grant crossed a level
	// boundary and a notification should be delivered.
	LeveledUp bool
}

// SetResult is returned by AdminSet.
type SetResult struct {
	Delta     int
	NewPoints int
	Level     int
}

// CheckResult is returned by Check.
type CheckResult struct {
	Points  int
	Level   int
	History []Event
}

// Package members keeps a registry of everyone the bot has seen, so that
// leaderboards can show display names and commands can resolve @username
// targets without asking the platform each time.
package members

import (
	"strings"
	"time"
)

// Member is one known user.
type Member struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DisplayName returns the best human-readable name for the member.
func (m *Member) DisplayName() string {
	name := strings.TrimSpace(m.FirstName + " " + m.LastName)
	if name != "" {
		return name
	}
	if m.Username != "" {
		return "@" + m.Username
	}
	return ""
}

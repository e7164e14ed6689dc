// Package admin authorizes the privileged karmaadmin commands. Owners from
// config are always authorized; everyone else can elevate over DM with the
// argon2id password login, which opens a 24-hour session.
package admin

import "time"

// Session is one authenticated admin session.
type Session struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	SessionToken string    `db:"session_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// sessionTTL is how long a login stays valid.
const sessionTTL = 24 * time.Hour

// maxAttempts failed logins within attemptWindow lock the user out.
const (
	maxAttempts   = 3
	attemptWindow = time.Hour
)

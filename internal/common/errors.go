// Package common — errors.go defines the sentinel errors shared by all
// features. Handlers compare against these with errors.Is/errors.As to pick
// the right user-facing reply; none of them is fatal to the process.
package common

import (
	"errors"
	"fmt"
	"time"
)

// Karma errors
var (
	// ErrSelfTarget — actor tried to give/remove their own karma
	ErrSelfTarget = errors.New("you cannot change your own karma")
	// ErrInvalidAmount — amount outside the allowed range
	ErrInvalidAmount = errors.New("amount must be between 1 and 10")
	// ErrInvalidLimit — leaderboard limit outside 1..25
	ErrInvalidLimit = errors.New("limit must be between 1 and 25")
)

// Board errors
var (
	// ErrMinKarmaRange — kudo board threshold outside 1..10
	ErrMinKarmaRange = errors.New("minimum karma must be between 1 and 10")
)

// Admin errors
var (
	// ErrNotAdmin — caller is not authorized for admin commands
	ErrNotAdmin = errors.New("you are not allowed to use admin commands")
	// ErrWrongPassword — admin login with a wrong password
	ErrWrongPassword = errors.New("wrong password")
	// ErrTooManyAttempts — brute-force lockout, wait an hour
	ErrTooManyAttempts = errors.New("too many login attempts, wait an hour")
)

// CooldownError reports that the actor must wait before granting or removing
// karma again. Remaining is how long is left in the window.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active, wait %s", e.Remaining.Round(time.Second))
}

// AsCooldown unwraps err into a *CooldownError, or returns nil.
func AsCooldown(err error) *CooldownError {
	var ce *CooldownError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

// Package karma — service.go holds the karma business logic: policy checks,
// the cooldown gate, and level computation composed over the ledger.
package karma

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/YTstyo/Dis-karm/internal/common"
	"github.com/YTstyo/Dis-karm/internal/config"
)

// Amount bounds for user-initiated give/remove.
const (
	MinAmount = 1
	MaxAmount = 10
)

// Leaderboard limit bounds.
const (
	MinLeaderboardLimit = 1
	MaxLeaderboardLimit = 25
)

// historyPreview is how many recent events Check returns.
const historyPreview = 5

// Ledger is the store the service mutates. *Repository implements it; tests
// substitute an in-memory fake.
type Ledger interface {
	Get(ctx context.Context, userID, guildID int64) (*Record, error)
	ApplyDelta(ctx context.Context, userID, guildID int64, delta int, reason string) (int, error)
	Set(ctx context.Context, userID, guildID int64, value int, reason string) (delta, newPoints int, err error)
	Leaderboard(ctx context.Context, guildID int64, limit int) ([]LeaderboardEntry, error)
	History(ctx context.Context, userID, guildID int64, limit int) ([]Event, error)
	PurgeEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service orchestrates the cooldown gate, the ledger and leveling.
type Service struct {
	ledger Ledger
	gate   *CooldownGate
	cfg    *config.Config
}

// NewService creates the karma service with its own cooldown gate.
func NewService(ledger Ledger, cfg *config.Config) *Service {
	return &Service{
		ledger: ledger,
		gate:   NewCooldownGate(cfg.CooldownWindow()),
		cfg:    cfg,
	}
}

// Give awards amount points from actor to target. Fails on self-target and
// while the actor's cooldown is active; on success the actor's cooldown is
// recorded.
func (s *Service) Give(ctx context.Context, actorID, targetID, guildID int64, amount int, reason string) (*Result, error) {
	return s.change(ctx, actorID, targetID, guildID, amount, reason)
}

// Remove takes amount points from target. Same policy as Give.
func (s *Service) Remove(ctx context.Context, actorID, targetID, guildID int64, amount int, reason string) (*Result, error) {
	return s.change(ctx, actorID, targetID, guildID, -amount, reason)
}

func (s *Service) change(ctx context.Context, actorID, targetID, guildID int64, delta int, reason string) (*Result, error) {
	abs := delta
	if abs < 0 {
		abs = -abs
	}
	if abs < MinAmount || abs > MaxAmount {
		return nil, common.ErrInvalidAmount
	}
	if actorID == targetID {
		return nil, common.ErrSelfTarget
	}
	if remaining, active := s.gate.Check(actorID); active {
		return nil, &common.CooldownError{Remaining: remaining}
	}

	newPoints, err := s.ledger.ApplyDelta(ctx, targetID, guildID, delta, reason)
	if err != nil {
		return nil, err
	}
	s.gate.Record(actorID)

	log.WithFields(log.Fields{
		"actor":  actorID,
		"target": targetID,
		"guild":  guildID,
		"delta":  delta,
	}).Info("Karma changed")

	return &Result{
		NewPoints: newPoints,
		Level:     LevelFor(newPoints, s.cfg.KarmaLevelInterval),
	}, nil
}

// AdminSet overwrites target's total with value. No self-target or cooldown
// restriction: the caller is pre-authorized by the admin layer.
func (s *Service) AdminSet(ctx context.Context, targetID, guildID int64, value int, reason string) (*SetResult, error) {
	if reason == "" {
		reason = "Admin adjustment"
	}
	delta, newPoints, err := s.ledger.Set(ctx, targetID, guildID, value, reason)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"target": targetID,
		"guild":  guildID,
		"value":  value,
		"delta":  delta,
	}).Info("Karma set by admin")

	return &SetResult{
		Delta:     delta,
		NewPoints: newPoints,
		Level:     LevelFor(newPoints, s.cfg.KarmaLevelInterval),
	}, nil
}

// Check returns target's total, level and the last few history events.
func (s *Service) Check(ctx context.Context, targetID, guildID int64) (*CheckResult, error) {
	rec, err := s.ledger.Get(ctx, targetID, guildID)
	if err != nil {
		return nil, err
	}
	history, err := s.ledger.History(ctx, targetID, guildID, historyPreview)
	if err != nil {
		return nil, err
	}
	return &CheckResult{
		Points:  rec.Points,
		Level:   LevelFor(rec.Points, s.cfg.KarmaLevelInterval),
		History: history,
	}, nil
}

// LeaderboardView returns up to limit entries for the guild with each entry's
// level annotated. A limit outside 1..25 is rejected; zero means the
// configured default.
func (s *Service) LeaderboardView(ctx context.Context, guildID int64, limit int) ([]LeaderboardEntry, error) {
	if limit == 0 {
		limit = s.cfg.LeaderboardLimit
	}
	if limit < MinLeaderboardLimit || limit > MaxLeaderboardLimit {
		return nil, common.ErrInvalidLimit
	}
	entries, err := s.ledger.Leaderboard(ctx, guildID, limit)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Level = LevelFor(entries[i].Points, s.cfg.KarmaLevelInterval)
	}
	return entries, nil
}

// ReactionGrant applies an unconditional +1 for a recognized emoji reaction.
// No cooldown and no self-target check here: the self-reaction skip belongs
// to the event boundary, and reactions sit in a different trust tier than
// manual commands. LeveledUp is set when the grant crossed a level boundary.
func (s *Service) ReactionGrant(ctx context.Context, targetID, guildID int64, emoji string) (*Result, error) {
	reason := fmt.Sprintf("Received %s reaction", emoji)
	newPoints, err := s.ledger.ApplyDelta(ctx, targetID, guildID, 1, reason)
	if err != nil {
		return nil, err
	}

	interval := s.cfg.KarmaLevelInterval
	newLevel := LevelFor(newPoints, interval)
	oldLevel := LevelFor(newPoints-1, interval)

	return &Result{
		NewPoints: newPoints,
		Level:     newLevel,
		LeveledUp: newLevel > oldLevel,
	}, nil
}

// PurgeOldEvents deletes history entries past the configured retention.
// Called by the daily maintenance job; totals are unaffected.
func (s *Service) PurgeOldEvents(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.cfg.HistoryRetention())
	return s.ledger.PurgeEventsBefore(ctx, cutoff)
}

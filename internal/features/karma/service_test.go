package karma

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YTstyo/Dis-karm/internal/common"
	"github.com/YTstyo/Dis-karm/internal/config"
)

// fakeLedger is an in-memory Ledger for service tests. Mutations go through
// the same mutex so the concurrency test below is meaningful.
type fakeLedger struct {
	mu      sync.Mutex
	records map[[2]int64]*Record
	events  []Event
	nextID  int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[[2]int64]*Record)}
}

func (f *fakeLedger) Get(_ context.Context, userID, guildID int64) (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[[2]int64{userID, guildID}]; ok {
		cp := *rec
		return &cp, nil
	}
	return &Record{UserID: userID, GuildID: guildID}, nil
}

func (f *fakeLedger) ApplyDelta(_ context.Context, userID, guildID int64, delta int, reason string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int64{userID, guildID}
	rec, ok := f.records[key]
	if !ok {
		rec = &Record{UserID: userID, GuildID: guildID}
		f.records[key] = rec
	}
	rec.Points += delta
	rec.LastUpdated = time.Now()
	f.nextID++
	f.events = append(f.events, Event{
		ID: f.nextID, UserID: userID, GuildID: guildID,
		Change: delta, Reason: reason, Timestamp: time.Now(),
	})
	return rec.Points, nil
}

func (f *fakeLedger) Set(ctx context.Context, userID, guildID int64, value int, reason string) (int, int, error) {
	f.mu.Lock()
	current := 0
	if rec, ok := f.records[[2]int64{userID, guildID}]; ok {
		current = rec.Points
	}
	f.mu.Unlock()
	delta := value - current
	newPoints, err := f.ApplyDelta(ctx, userID, guildID, delta, reason)
	return delta, newPoints, err
}

func (f *fakeLedger) Leaderboard(_ context.Context, guildID int64, limit int) ([]LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []LeaderboardEntry
	for _, rec := range f.records {
		if rec.GuildID == guildID {
			entries = append(entries, LeaderboardEntry{UserID: rec.UserID, Points: rec.Points})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *fakeLedger) History(_ context.Context, userID, guildID int64, limit int) ([]Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Event
	for i := len(f.events) - 1; i >= 0 && len(out) < limit; i-- {
		e := f.events[i]
		if e.UserID == userID && e.GuildID == guildID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedger) PurgeEventsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.events[:0]
	var purged int64
	for _, e := range f.events {
		if e.Timestamp.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, e)
	}
	f.events = kept
	return purged, nil
}

func testConfig() *config.Config {
	return &config.Config{
		KarmaCooldownSeconds: 60,
		KarmaLevelInterval:   50,
		LeaderboardLimit:     10,
		HistoryRetentionDays: 30,
	}
}

func newTestService(t *testing.T) (*Service, *fakeLedger) {
	t.Helper()
	ledger := newFakeLedger()
	return NewService(ledger, testConfig()), ledger
}

func TestGiveAndCheck(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	res, err := svc.Give(ctx, 1, 2, 100, 5, "helped")
	require.NoError(t, err)
	assert.Equal(t, 5, res.NewPoints)
	assert.Equal(t, 0, res.Level)

	check, err := svc.Check(ctx, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, 5, check.Points)
	assert.Equal(t, 0, check.Level)
	require.Len(t, check.History, 1)
	assert.Equal(t, 5, check.History[0].Change)
	assert.Equal(t, "helped", check.History[0].Reason)
}

func TestGiveRejectsSelfTarget(t *testing.T) {
	ctx := context.Background()
	svc, ledger := newTestService(t)

	_, err := svc.Give(ctx, 1, 1, 100, 3, "")
	assert.ErrorIs(t, err, common.ErrSelfTarget)

	// The rejection left no trace in the store.
	rec, err := ledger.Get(ctx, 1, 100)
	require.NoError(t, err)
	assert.Zero(t, rec.Points)
	assert.Empty(t, ledger.events)

	// And no cooldown was recorded for the failed attempt.
	_, active := svc.gate.Check(1)
	assert.False(t, active)
}

func TestGiveAmountBounds(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Give(ctx, 1, 2, 100, 0, "")
	assert.ErrorIs(t, err, common.ErrInvalidAmount)
	_, err = svc.Give(ctx, 1, 2, 100, 11, "")
	assert.ErrorIs(t, err, common.ErrInvalidAmount)
	_, err = svc.Remove(ctx, 1, 2, 100, 25, "")
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	_, err = svc.Give(ctx, 1, 2, 100, 10, "")
	assert.NoError(t, err)
}

func TestGiveCooldown(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.gate.now = func() time.Time { return now }

	_, err := svc.Give(ctx, 1, 2, 100, 1, "")
	require.NoError(t, err)

	// Second give inside the window fails with the remaining wait, even for a
	// different target.
	now = now.Add(10 * time.Second)
	_, err = svc.Give(ctx, 1, 3, 100, 1, "")
	cd := common.AsCooldown(err)
	require.NotNil(t, cd)
	assert.Equal(t, 50*time.Second, cd.Remaining)

	// A different actor is not throttled.
	_, err = svc.Give(ctx, 9, 2, 100, 1, "")
	assert.NoError(t, err)

	// After the window the original actor succeeds again.
	now = now.Add(51 * time.Second)
	_, err = svc.Give(ctx, 1, 3, 100, 1, "")
	assert.NoError(t, err)
}

func TestRemoveGoesNegative(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	res, err := svc.Remove(ctx, 1, 2, 100, 7, "spam")
	require.NoError(t, err)
	assert.Equal(t, -7, res.NewPoints)
	assert.Equal(t, 0, res.Level)
}

func TestAdminSetRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Give(ctx, 1, 2, 100, 4, "")
	require.NoError(t, err)

	res, err := svc.AdminSet(ctx, 2, 100, 120, "")
	require.NoError(t, err)
	assert.Equal(t, 116, res.Delta)
	assert.Equal(t, 120, res.NewPoints)
	assert.Equal(t, 2, res.Level)

	check, err := svc.Check(ctx, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, 120, check.Points)
	// The default reason is recorded when none was given.
	require.NotEmpty(t, check.History)
	assert.Equal(t, "Admin adjustment", check.History[0].Reason)
	assert.Equal(t, 116, check.History[0].Change)
}

func TestLeaderboardView(t *testing.T) {
	ctx := context.Background()
	svc, ledger := newTestService(t)

	for userID, points := range map[int64]int{2: 5, 3: 120, 4: 55, 5: 5} {
		_, _, err := ledger.Set(ctx, userID, 100, points, "seed")
		require.NoError(t, err)
	}
	// Same user in another guild must not leak in.
	_, _, err := ledger.Set(ctx, 3, 200, 999, "seed")
	require.NoError(t, err)

	entries, err := svc.LeaderboardView(ctx, 100, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(3), entries[0].UserID)
	assert.Equal(t, 120, entries[0].Points)
	assert.Equal(t, 2, entries[0].Level)
	assert.Equal(t, int64(4), entries[1].UserID)
	assert.Equal(t, 1, entries[1].Level)
	// Points tie broken by user id ascending.
	assert.Equal(t, int64(2), entries[2].UserID)

	// Zero limit means the configured default.
	entries, err = svc.LeaderboardView(ctx, 100, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 4)

	_, err = svc.LeaderboardView(ctx, 100, 26)
	assert.ErrorIs(t, err, common.ErrInvalidLimit)
	_, err = svc.LeaderboardView(ctx, 100, -1)
	assert.ErrorIs(t, err, common.ErrInvalidLimit)
}

func TestReactionGrant(t *testing.T) {
	ctx := context.Background()
	svc, ledger := newTestService(t)

	_, _, err := ledger.Set(ctx, 2, 100, 49, "seed")
	require.NoError(t, err)

	// 49 -> 50 crosses the first boundary.
	res, err := svc.ReactionGrant(ctx, 2, 100, "🔥")
	require.NoError(t, err)
	assert.Equal(t, 50, res.NewPoints)
	assert.Equal(t, 1, res.Level)
	assert.True(t, res.LeveledUp)

	// 50 -> 51 stays inside the band.
	res, err = svc.ReactionGrant(ctx, 2, 100, "👍")
	require.NoError(t, err)
	assert.Equal(t, 51, res.NewPoints)
	assert.False(t, res.LeveledUp)

	// Reactions bypass the cooldown gate entirely.
	res, err = svc.ReactionGrant(ctx, 2, 100, "🎉")
	require.NoError(t, err)
	assert.Equal(t, 52, res.NewPoints)

	// The reason names the emoji.
	history, err := ledger.History(ctx, 2, 100, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Received 🎉 reaction", history[0].Reason)
}

func TestDeltaSumMatchesTotal(t *testing.T) {
	ctx := context.Background()
	svc, ledger := newTestService(t)

	// Concurrent reaction grants from many actors; the total must equal the
	// sum of applied deltas.
	const grants = 50
	var wg sync.WaitGroup
	for i := 0; i < grants; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ReactionGrant(ctx, 2, 100, "👏")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := ledger.Get(ctx, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, grants, rec.Points)

	sum := 0
	for _, e := range ledger.events {
		sum += e.Change
	}
	assert.Equal(t, rec.Points, sum)
}

func TestPurgeOldEvents(t *testing.T) {
	ctx := context.Background()
	svc, ledger := newTestService(t)

	_, err := svc.ReactionGrant(ctx, 2, 100, "👍")
	require.NoError(t, err)
	_, err = svc.ReactionGrant(ctx, 2, 100, "👍")
	require.NoError(t, err)

	// Age the first event past the retention window.
	ledger.mu.Lock()
	ledger.events[0].Timestamp = time.Now().Add(-31 * 24 * time.Hour)
	ledger.mu.Unlock()

	purged, err := svc.PurgeOldEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	// Totals are untouched by the purge.
	rec, err := ledger.Get(ctx, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Points)

	// Idempotent when nothing is stale.
	purged, err = svc.PurgeOldEvents(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)
}

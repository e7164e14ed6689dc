// Package karma — cooldown.go rate-limits user-initiated grant/removal
// actions. The map is owned by the Service instance, not process-global, so
// instances stay independent and tests stay simple. Entries are in-memory
// only; losing them on restart is acceptable for a 60-second window.
package karma

import (
	"sync"
	"time"
)

// CooldownGate tracks each actor's last grant/removal time. Only the acting
// user is gated, never the target; admin set and reaction grants bypass the
// gate entirely.
type CooldownGate struct {
	mu     sync.Mutex
	last   map[int64]time.Time
	window time.Duration
	now    func() time.Time
}

// NewCooldownGate creates a gate with the given window. A zero window lets
// every action through.
func NewCooldownGate(window time.Duration) *CooldownGate {
	return &CooldownGate{
		last:   make(map[int64]time.Time),
		window: window,
		now:    time.Now,
	}
}

// Check returns the remaining wait and true while the actor's last action is
// within the window, otherwise zero and false.
func (g *CooldownGate) Check(actorID int64) (time.Duration, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.last[actorID]
	if !ok {
		return 0, false
	}
	elapsed := g.now().Sub(last)
	if elapsed < g.window {
		return g.window - elapsed, true
	}
	return 0, false
}

// Record overwrites the actor's last-action timestamp with now.
func (g *CooldownGate) Record(actorID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last[actorID] = g.now()
}

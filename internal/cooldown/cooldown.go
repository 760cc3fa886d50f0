// Package cooldown suppresses repeated analysis triggers from the same
// priority class inside a rule-defined window.
package cooldown

import (
	"sync"
	"time"

	"github.com/steveyegge/mentor/internal/types"
)

// DefaultCooldown applies when no rule carries the priority being checked.
const DefaultCooldown = 10 * time.Second

// RuleSource supplies the cooldown window for a priority class. The rule
// table implements this; going through the interface means adaptive tuner
// adjustments take effect on the very next check.
type RuleSource interface {
	CooldownFor(priority types.Priority) (time.Duration, bool)
}

// Tracker records the last admitted trigger per priority class.
// Immediate priority never goes through the tracker; the admission
// controller bypasses it before cooldown is consulted.
type Tracker struct {
	mu            sync.Mutex
	lastTriggered map[types.Priority]time.Time
	source        RuleSource
	fallback      time.Duration

	now func() time.Time
}

// NewTracker creates a cooldown tracker backed by the given rule source.
// A non-positive fallback uses DefaultCooldown.
func NewTracker(source RuleSource, fallback time.Duration) *Tracker {
	if fallback <= 0 {
		fallback = DefaultCooldown
	}
	return &Tracker{
		lastTriggered: make(map[types.Priority]time.Time),
		source:        source,
		fallback:      fallback,
		now:           time.Now,
	}
}

// InCooldown reports whether the priority class triggered within its
// cooldown window. A class that has never triggered is not in cooldown.
func (t *Tracker) InCooldown(priority types.Priority) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.lastTriggered[priority]
	if !ok {
		return false
	}

	window := t.fallback
	if cd, found := t.source.CooldownFor(priority); found {
		window = cd
	}

	return t.now().Sub(last) < window
}

// MarkTriggered records an admitted trigger for the priority class.
func (t *Tracker) MarkTriggered(priority types.Priority) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastTriggered[priority] = t.now()
}

// SetClock replaces the tracker's clock. Test hook.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

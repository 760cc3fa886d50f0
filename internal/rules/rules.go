package rules

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/steveyegge/mentor/internal/types"
)

// Cooldown bounds for adaptive tuning. Helpful feedback shrinks a rule's
// cooldown toward MinCooldown; unhelpful feedback grows it toward MaxCooldown.
const (
	MinCooldown = 1 * time.Second
	MaxCooldown = 120 * time.Second

	shrinkFactor = 0.9
	growFactor   = 1.2
)

// Rule maps a set of trigger substrings to a priority and a cooldown.
// Rules are evaluated in table order; the first match wins.
type Rule struct {
	// ID uniquely identifies the rule for adaptive tuning
	ID string
	// Priority is assigned to changes matching this rule
	Priority types.Priority
	// Triggers are case-insensitive substrings searched for in change content
	Triggers []string
	// Cooldown is the minimum time between two admitted triggers of this
	// rule's priority class. Mutated at runtime by AdjustCooldown.
	Cooldown time.Duration
	// CallRequired is false for rules whose feedback can be produced locally
	CallRequired bool
	// Description is shown to users in diagnostics
	Description string
}

// Table is an ordered trigger rule table with classification heuristics.
// Rule order is fixed at construction; only cooldowns mutate afterward,
// so reads and tuner writes share one RWMutex.
type Table struct {
	mu    sync.RWMutex
	rules []Rule
	// byID indexes into rules for tuner lookups
	byID map[string]int
}

// NewTable validates and builds a rule table. The slice order is the
// evaluation order and is preserved exactly.
func NewTable(rules []Rule) (*Table, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("rule table cannot be empty")
	}

	byID := make(map[string]int, len(rules))
	for i, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule %d: missing id", i)
		}
		if _, dup := byID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate rule id %q", r.ID)
		}
		if len(r.Triggers) == 0 {
			return nil, fmt.Errorf("rule %q: no triggers", r.ID)
		}
		for _, trig := range r.Triggers {
			if strings.TrimSpace(trig) == "" {
				return nil, fmt.Errorf("rule %q: empty trigger", r.ID)
			}
		}
		if r.Priority != types.PriorityImmediate && r.Cooldown <= 0 {
			return nil, fmt.Errorf("rule %q: cooldown must be positive (got %v)", r.ID, r.Cooldown)
		}
		if r.Priority < types.PriorityImmediate || r.Priority > types.PriorityLow {
			return nil, fmt.Errorf("rule %q: invalid priority %d", r.ID, int(r.Priority))
		}
		byID[r.ID] = i
	}

	// Copy so callers cannot mutate the table behind the lock
	owned := make([]Rule, len(rules))
	copy(owned, rules)

	return &Table{rules: owned, byID: byID}, nil
}

// Classify assigns a priority to a change. The first rule whose trigger
// substring appears (case-insensitively) in the content wins; when no rule
// matches, size and kind heuristics apply. Never fails.
func (t *Table) Classify(change types.CodeChange) types.Priority {
	t.mu.RLock()
	defer t.mu.RUnlock()

	content := strings.ToLower(change.Content)
	for _, r := range t.rules {
		for _, trig := range r.Triggers {
			if strings.Contains(content, strings.ToLower(trig)) {
				return r.Priority
			}
		}
	}

	// No keyword hit: fall back to size/kind heuristics
	switch {
	case change.LinesChanged > 50:
		return types.PriorityHigh
	case change.LinesChanged > 20:
		return types.PriorityMedium
	case change.Kind == types.ChangeDeletion:
		return types.PriorityLow
	default:
		return types.PriorityMedium
	}
}

// MatchRule returns the first rule matching the change, or nil when
// classification fell through to heuristics.
func (t *Table) MatchRule(change types.CodeChange) *Rule {
	t.mu.RLock()
	defer t.mu.RUnlock()

	content := strings.ToLower(change.Content)
	for _, r := range t.rules {
		for _, trig := range r.Triggers {
			if strings.Contains(content, strings.ToLower(trig)) {
				rule := r
				return &rule
			}
		}
	}
	return nil
}

// CooldownFor returns the cooldown of the first rule carrying the given
// priority. The second return is false when no rule has that priority.
func (t *Table) CooldownFor(priority types.Priority) (time.Duration, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, r := range t.rules {
		if r.Priority == priority {
			return r.Cooldown, true
		}
	}
	return 0, false
}

// AdjustCooldown applies multiplicative feedback to a rule's cooldown.
// Helpful feedback shrinks it 10% (floored at MinCooldown) so valuable
// rules fire more often; unhelpful feedback grows it 20% (capped at
// MaxCooldown) so noisy rules fade out.
func (t *Table) AdjustCooldown(ruleID string, wasHelpful bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.byID[ruleID]
	if !ok {
		return fmt.Errorf("unknown rule id %q", ruleID)
	}

	cd := t.rules[i].Cooldown
	if wasHelpful {
		cd = time.Duration(float64(cd) * shrinkFactor)
		if cd < MinCooldown {
			cd = MinCooldown
		}
	} else {
		cd = time.Duration(float64(cd) * growFactor)
		if cd > MaxCooldown {
			cd = MaxCooldown
		}
	}
	t.rules[i].Cooldown = cd
	return nil
}

// ActiveRuleIDs returns rule IDs in evaluation order.
func (t *Table) ActiveRuleIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, len(t.rules))
	for i, r := range t.rules {
		ids[i] = r.ID
	}
	return ids
}

// Rules returns a snapshot copy of the table in evaluation order.
func (t *Table) Rules() []Rule {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

package types

import "fmt"

// Priority classifies how urgently a code change should be analyzed.
// Lower values are more urgent.
type Priority int

const (
	// PriorityImmediate is reserved for critical findings (syntax errors,
	// null-dereference risks) that must never be throttled.
	PriorityImmediate Priority = iota
	// PriorityHigh covers security-sensitive and correctness-sensitive changes.
	PriorityHigh
	// PriorityMedium is the default for ordinary edits.
	PriorityMedium
	// PriorityLow covers cosmetic or low-signal changes.
	PriorityLow
)

// String returns a human-readable string representation of the priority
func (p Priority) String() string {
	switch p {
	case PriorityImmediate:
		return "immediate"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(p))
	}
}

// Cost returns the number of rate-limiter tokens an analysis at this
// priority consumes. More urgent work is cheaper so it starves last.
func (p Priority) Cost() int {
	switch p {
	case PriorityImmediate:
		return 1
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 3
	default:
		return 4
	}
}

// MoreUrgentThan reports whether p should be dispatched before other.
func (p Priority) MoreUrgentThan(other Priority) bool {
	return p < other
}

// ParsePriority converts a string (as used in rule files) to a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "immediate":
		return PriorityImmediate, nil
	case "high":
		return PriorityHigh, nil
	case "medium":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	default:
		return PriorityMedium, fmt.Errorf("unknown priority %q", s)
	}
}

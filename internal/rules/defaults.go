package rules

import (
	"time"

	"github.com/steveyegge/mentor/internal/types"
)

// DefaultRules returns the built-in trigger rule table for the mentor.
// Order matters: immediate rules come first so a change containing both a
// critical marker and a lower-priority keyword is classified as critical.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:       "syntax-errors",
			Priority: types.PriorityImmediate,
			Triggers: []string{
				"SyntaxError",
				"unexpected token",
				"unterminated string",
			},
			Cooldown:     0, // immediate bypasses cooldown entirely
			CallRequired: true,
			Description:  "Broken syntax the developer is likely staring at right now",
		},
		{
			ID:       "null-safety",
			Priority: types.PriorityImmediate,
			Triggers: []string{
				"Cannot read properties of null",
				"Cannot read properties of undefined",
				"NullPointerException",
				"nil pointer dereference",
			},
			Cooldown:     0,
			CallRequired: true,
			Description:  "Null or nil dereference risk",
		},
		{
			ID:       "security",
			Priority: types.PriorityHigh,
			Triggers: []string{
				"eval(",
				"innerHTML",
				"document.write",
				"dangerouslySetInnerHTML",
				"child_process",
				"os.system(",
			},
			Cooldown:     5 * time.Second,
			CallRequired: true,
			Description:  "Potentially unsafe API usage",
		},
		{
			ID:       "error-handling",
			Priority: types.PriorityHigh,
			Triggers: []string{
				"catch (e) {}",
				"except: pass",
				"_ = err",
				"// ignore error",
			},
			Cooldown:     8 * time.Second,
			CallRequired: true,
			Description:  "Swallowed or ignored errors",
		},
		{
			ID:       "code-smell",
			Priority: types.PriorityMedium,
			Triggers: []string{
				"FIXME",
				"HACK",
				"copy-paste",
				"magic number",
			},
			Cooldown:     15 * time.Second,
			CallRequired: true,
			Description:  "Self-flagged shortcuts worth a second look",
		},
		{
			ID:       "test-hygiene",
			Priority: types.PriorityLow,
			Triggers: []string{
				"test.skip",
				"xit(",
				"@pytest.mark.skip",
				"t.Skip(",
			},
			Cooldown:     20 * time.Second,
			CallRequired: false,
			Description:  "Disabled tests accumulating in the suite",
		},
	}
}

// DefaultTable builds the built-in table. Panics only if the defaults
// themselves are invalid, which is a programming error.
func DefaultTable() *Table {
	t, err := NewTable(DefaultRules())
	if err != nil {
		panic("invalid built-in rule table: " + err.Error())
	}
	return t
}

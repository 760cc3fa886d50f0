package rules

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/steveyegge/mentor/internal/types"
)

// ruleFile is the on-disk YAML shape of a rule table.
//
// Example:
//
//	rules:
//	  - id: security
//	    priority: high
//	    triggers: ["eval(", "innerHTML"]
//	    cooldown_ms: 5000
//	    call_required: true
//	    description: Potentially unsafe API usage
type ruleFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	ID           string   `yaml:"id"`
	Priority     string   `yaml:"priority"`
	Triggers     []string `yaml:"triggers"`
	CooldownMs   int64    `yaml:"cooldown_ms"`
	CallRequired bool     `yaml:"call_required"`
	Description  string   `yaml:"description"`
}

// LoadFile reads a YAML rule file and builds a validated table from it.
// The file order becomes the evaluation order.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	parsed := make([]Rule, 0, len(rf.Rules))
	for _, e := range rf.Rules {
		prio, err := types.ParsePriority(e.Priority)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", e.ID, err)
		}
		parsed = append(parsed, Rule{
			ID:           e.ID,
			Priority:     prio,
			Triggers:     e.Triggers,
			Cooldown:     time.Duration(e.CooldownMs) * time.Millisecond,
			CallRequired: e.CallRequired,
			Description:  e.Description,
		})
	}

	table, err := NewTable(parsed)
	if err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return table, nil
}

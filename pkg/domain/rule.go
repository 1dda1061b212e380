package domain

import (
	"fmt"
	"strings"
)

// Rule maps a set of lowercase keywords to a fixed response.
type Rule struct {
	Keywords []string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`
	Response string   `json:"response" yaml:"response" mapstructure:"response"`
}

// RuleTable is an ordered, immutable list of rules. Order defines match priority.
// The zero value is a valid empty table.
type RuleTable struct {
	rules []Rule
}

// NewRuleTable validates the rules and freezes them into a table.
// Keywords are lowercased so they compare against lowercased input.
func NewRuleTable(rules ...Rule) (RuleTable, error) {
	frozen := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if len(r.Keywords) == 0 {
			return RuleTable{}, fmt.Errorf("%w: rule %d has no keywords", ErrInvalidRule, i)
		}
		seen := make(map[string]struct{}, len(r.Keywords))
		keywords := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if kw == "" {
				return RuleTable{}, fmt.Errorf("%w: rule %d has an empty keyword", ErrInvalidRule, i)
			}
			kw = strings.ToLower(kw)
			if _, dup := seen[kw]; dup {
				return RuleTable{}, fmt.Errorf("%w: rule %d repeats keyword %q", ErrInvalidRule, i, kw)
			}
			seen[kw] = struct{}{}
			keywords = append(keywords, kw)
		}
		frozen = append(frozen, Rule{Keywords: keywords, Response: r.Response})
	}
	return RuleTable{rules: frozen}, nil
}

// MustRuleTable is like NewRuleTable but panics on invalid rules.
// Intended for compiled-in tables.
func MustRuleTable(rules ...Rule) RuleTable {
	t, err := NewRuleTable(rules...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of rules.
func (t RuleTable) Len() int {
	return len(t.rules)
}

// At returns the rule at position i. Keywords are copied.
func (t RuleTable) At(i int) Rule {
	r := t.rules[i]
	return Rule{Keywords: append([]string(nil), r.Keywords...), Response: r.Response}
}

// Rules returns a copy of the table contents in priority order.
func (t RuleTable) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	for i := range t.rules {
		out[i] = t.At(i)
	}
	return out
}

// Each calls fn for every rule in priority order until fn returns false.
// The rule passed to fn must not be modified.
func (t RuleTable) Each(fn func(i int, r Rule) bool) {
	for i, r := range t.rules {
		if !fn(i, r) {
			return
		}
	}
}

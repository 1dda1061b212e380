// Package matcher implements the offline keyword-to-response engine.
//
// Matching is case-insensitive substring containment against the whole input, not
// word matching: the keyword "hat" matches "chatter".
package matcher

import (
	"strings"

	"github.com/aretw0/sentinel/pkg/domain"
)

// Find returns the first rule with a keyword contained in the lowercased input,
// its index, and whether any rule matched.
func Find(input string, table domain.RuleTable) (domain.Rule, int, bool) {
	if input == "" {
		return domain.Rule{}, -1, false
	}
	q := strings.ToLower(input)

	var (
		hit   domain.Rule
		index = -1
	)
	table.Each(func(i int, r domain.Rule) bool {
		for _, kw := range r.Keywords {
			if strings.Contains(q, kw) {
				hit, index = r, i
				return false
			}
		}
		return true
	})
	return hit, index, index >= 0
}

// Match returns the response of the first matching rule, or fallback.
func Match(input string, table domain.RuleTable, fallback string) string {
	if r, _, ok := Find(input, table); ok {
		return r.Response
	}
	return fallback
}

// Matcher binds a rule table to its fallback response.
type Matcher struct {
	Table    domain.RuleTable
	Fallback string
}

// New creates a Matcher.
func New(table domain.RuleTable, fallback string) *Matcher {
	return &Matcher{Table: table, Fallback: fallback}
}

// Respond returns the reply for input and the index of the matched rule (-1 on fallback).
func (m *Matcher) Respond(input string) (string, int) {
	if r, i, ok := Find(input, m.Table); ok {
		return r.Response, i
	}
	return m.Fallback, -1
}

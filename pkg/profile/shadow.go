package profile

import (
	"strings"

	"github.com/aretw0/sentinel/pkg/domain"
)

// Shadow reports a keyword that can never select its rule: any input containing
// Keyword also contains a keyword of the earlier rule By, which wins first.
type Shadow struct {
	Rule    int
	Keyword string
	By      int
}

// Shadowed lists every shadowed keyword in rule order.
// A rule whose keywords are all shadowed is unreachable.
func (p Profile) Shadowed() []Shadow {
	rules := p.Rules.Rules()
	var out []Shadow
	for j, r := range rules {
		for _, kw := range r.Keywords {
			for i := 0; i < j; i++ {
				if containsAny(kw, rules[i].Keywords) {
					out = append(out, Shadow{Rule: j, Keyword: kw, By: i})
					break
				}
			}
		}
	}
	return out
}

// Unreachable returns the indexes of rules that no input can select.
func (p Profile) Unreachable() []int {
	shadowed := make(map[int]int)
	for _, s := range p.Shadowed() {
		shadowed[s.Rule]++
	}
	var out []int
	p.Rules.Each(func(i int, r domain.Rule) bool {
		if n := shadowed[i]; n > 0 && n == len(r.Keywords) {
			out = append(out, i)
		}
		return true
	})
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

package middleware

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/aretw0/sentinel/pkg/ports"
)

// Mask replaces every PII match in stored entries.
const Mask = "***"

// DefaultPIIPatterns masks e-mail addresses and long digit runs (phone or card numbers).
var DefaultPIIPatterns = []string{
	`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`,
	`\b\d(?:[ \-]?\d){8,}\b`,
}

type piiMiddleware struct {
	next     ports.TranscriptStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks pattern matches in user entries
// before they reach the store. System entries keep their text except where they
// reproduce a match taken from a user entry, as an echo or a generated reply does.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.TranscriptStore) ports.TranscriptStore {
		return &piiMiddleware{
			next:     next,
			patterns: patterns,
		}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, key string, t *domain.Transcript) error {
	// Work on a copy so the caller's in-memory transcript keeps the raw text.
	masked := t.Snapshot()
	var found []string
	for i, e := range masked.Entries {
		if e.Role == domain.RoleUser {
			found = append(found, m.matches(e.Text)...)
			masked.Entries[i].Text = m.mask(e.Text)
		}
	}
	if len(found) > 0 {
		// Longest first so a match never leaves a tail of a longer one behind.
		sort.Slice(found, func(i, j int) bool { return len(found[i]) > len(found[j]) })
		for i, e := range masked.Entries {
			if e.Role != domain.RoleUser {
				masked.Entries[i].Text = replaceAll(e.Text, found)
			}
		}
	}
	return m.next.Save(ctx, key, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, key string) (*domain.Transcript, error) {
	return m.next.Load(ctx, key)
}

func (m *piiMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) mask(text string) string {
	for _, p := range m.patterns {
		text = p.ReplaceAllString(text, Mask)
	}
	return text
}

func (m *piiMiddleware) matches(text string) []string {
	var out []string
	for _, p := range m.patterns {
		out = append(out, p.FindAllString(text, -1)...)
	}
	return out
}

func replaceAll(text string, literals []string) string {
	for _, l := range literals {
		text = strings.ReplaceAll(text, l, Mask)
	}
	return text
}

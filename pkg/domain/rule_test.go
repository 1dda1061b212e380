package domain_test

import (
	"testing"

	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuleTable_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		rules []domain.Rule
	}{
		{"Empty Keyword Set", []domain.Rule{{Keywords: nil, Response: "x"}}},
		{"Empty Keyword", []domain.Rule{{Keywords: []string{""}, Response: "x"}}},
		{"Empty Keyword Among Others", []domain.Rule{{Keywords: []string{"a", ""}, Response: "x"}}},
		{"Duplicate Keyword", []domain.Rule{{Keywords: []string{"hi", "HI"}, Response: "x"}}},
		{"Second Rule Invalid", []domain.Rule{{Keywords: []string{"a"}}, {Keywords: []string{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewRuleTable(tt.rules...)
			assert.ErrorIs(t, err, domain.ErrInvalidRule)
		})
	}
}

func TestNewRuleTable_NormalisesAndCopies(t *testing.T) {
	keywords := []string{"WASEEQ", "Skill"}
	tbl, err := domain.NewRuleTable(domain.Rule{Keywords: keywords, Response: "R"})
	require.NoError(t, err)

	keywords[0] = "mutated"

	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, []string{"waseeq", "skill"}, tbl.At(0).Keywords)

	// Copies returned to callers do not alias the table.
	got := tbl.Rules()
	got[0].Keywords[0] = "changed"
	assert.Equal(t, "waseeq", tbl.At(0).Keywords[0])
}

func TestRuleTable_ZeroValue(t *testing.T) {
	var tbl domain.RuleTable
	assert.Equal(t, 0, tbl.Len())
	assert.Empty(t, tbl.Rules())
}

func TestMustRuleTable_Panics(t *testing.T) {
	assert.Panics(t, func() {
		domain.MustRuleTable(domain.Rule{Response: "no keywords"})
	})
}

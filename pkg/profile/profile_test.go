package profile_test

import (
	"testing"

	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/aretw0/sentinel/pkg/interpreter"
	"github.com/aretw0/sentinel/pkg/matcher"
	"github.com/aretw0/sentinel/pkg/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaseeq_ChatRules(t *testing.T) {
	p := profile.Waseeq()

	tests := []struct {
		input  string
		prefix string
	}{
		{"Who is WASEEQ?", "SUBJECT_IDENTIFIED"},
		{"list your skills", "SKILL_QUERY"},
		{"how do I contact him", "COMMS_PROTOCOL"},
		{"I'd like to hire you", "COMMS_PROTOCOL"},
		{"hello", "SENTINEL_GREETING"},
		{"zzz", "ERR_UNKNOWN_PACKET"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Contains(t, matcher.Match(tt.input, p.Rules, p.Fallback), tt.prefix)
		})
	}
}

func TestWaseeq_HelpListsEveryCommand(t *testing.T) {
	p := profile.Waseeq()

	res := interpreter.New(p.Commands, p.Prompt).Execute("help", nil)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, interpreter.Help(p.Commands), res.Entries[1].Text)

	for _, tok := range p.Commands.Tokens() {
		if tok == "help" {
			continue
		}
		assert.Contains(t, res.Entries[1].Text, tok)
	}
}

func TestWaseeq_ClearAndEcho(t *testing.T) {
	p := profile.Waseeq()
	it := interpreter.New(p.Commands, p.Prompt)

	assert.True(t, it.Execute("clear", nil).IsCleared())
	assert.Equal(t, "ping", it.Execute("echo ping", nil).Entries[1].Text)
}

func TestProfile_BootEntries(t *testing.T) {
	entries := profile.Waseeq().BootEntries()
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, domain.RoleSystem, e.Role)
	}
	assert.Equal(t, "TYPE 'help' FOR COMMAND LIST.", entries[2].Text)
}

func TestProfile_Validate(t *testing.T) {
	require.NoError(t, profile.Waseeq().Validate())

	p := profile.Waseeq()
	p.Fallback = " "
	assert.ErrorIs(t, p.Validate(), profile.ErrInvalidProfile)

	p = profile.Waseeq()
	p.Boot = []string{"ONE\nTWO"}
	assert.ErrorIs(t, p.Validate(), profile.ErrInvalidProfile)
}

func TestProfile_Shadowed(t *testing.T) {
	assert.Empty(t, profile.Waseeq().Shadowed())

	p := profile.Waseeq()
	p.Rules = domain.MustRuleTable(
		domain.Rule{Keywords: []string{"cat"}, Response: "meow"},
		domain.Rule{Keywords: []string{"catalog", "dog"}, Response: "partly shadowed"},
		domain.Rule{Keywords: []string{"concatenate"}, Response: "never"},
	)

	assert.Equal(t, []profile.Shadow{
		{Rule: 1, Keyword: "catalog", By: 0},
		{Rule: 2, Keyword: "concatenate", By: 0},
	}, p.Shadowed())
	assert.Equal(t, []int{2}, p.Unreachable())
}

package config_test

import (
	"testing"

	"github.com/aretw0/sentinel/pkg/config"
	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/aretw0/sentinel/pkg/interpreter"
	"github.com/aretw0/sentinel/pkg/matcher"
	"github.com/aretw0/sentinel/pkg/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfile_YAML(t *testing.T) {
	base := profile.Waseeq()
	p, err := config.LoadProfile("testdata/tiny.yaml", base)
	require.NoError(t, err)

	assert.Equal(t, "tiny", p.Name)
	assert.Equal(t, "root@tiny:#", p.Prompt)
	assert.Equal(t, base.Unavailable, p.Unavailable, "omitted fields keep the base value")
	assert.Equal(t, []string{"TINY_SHELL READY."}, p.Boot)

	assert.Equal(t, "PONG", matcher.Match("ping?", p.Rules, p.Fallback), "keywords are lowercased")
	assert.Equal(t, "FELINE_DETECTED", matcher.Match("chatter", p.Rules, p.Fallback))
	assert.Equal(t, "NO_IDEA", matcher.Match("skills", p.Rules, p.Fallback))

	it := interpreter.New(p.Commands, p.Prompt)
	assert.Equal(t, []string{"root@tiny:# help", "AVAILABLE: ping, clear, say"}, it.Execute("help", nil).Texts())
	assert.Equal(t, []string{"root@tiny:# say Hi", "Hi"}, it.Execute("say Hi", nil).Texts())
}

func TestLoadProfile_JSON(t *testing.T) {
	base := profile.Waseeq()
	p, err := config.LoadProfile("testdata/tiny.json", base)
	require.NoError(t, err)

	assert.Equal(t, "waseeq", p.Name)
	assert.Equal(t, "JSON_FALLBACK", p.Fallback)
	assert.Equal(t, 1, p.Rules.Len())
	assert.Equal(t, base.Commands.Tokens(), p.Commands.Tokens(), "commands kept from base")
}

func TestParseProfile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		is   error
	}{
		{"syntax", "rules: [", nil},
		{"unknown key", "colour: red", nil},
		{"empty keyword set", "rules:\n  - keywords: []\n    response: x", domain.ErrInvalidRule},
		{"empty keyword", "rules:\n  - keywords: ['']\n    response: x", domain.ErrInvalidRule},
		{"duplicate token", "commands:\n  - token: a\n  - token: A", domain.ErrInvalidCommand},
		{"bad effect", "commands:\n  - token: a\n    effect: explode", domain.ErrInvalidCommand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.ParseProfile([]byte(tt.doc), ".yaml", profile.Waseeq())
			require.ErrorIs(t, err, config.ErrInvalidTables)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestLoadProfile_Missing(t *testing.T) {
	_, err := config.LoadProfile("testdata/nope.yaml", profile.Waseeq())
	assert.ErrorIs(t, err, config.ErrInvalidTables)
}

func TestDump_RoundTrip(t *testing.T) {
	base := profile.Waseeq()
	data, err := config.Dump(base)
	require.NoError(t, err)

	p, err := config.ParseProfile(data, ".yaml", profile.Profile{})
	require.NoError(t, err)

	assert.Equal(t, base.Name, p.Name)
	assert.Equal(t, base.Rules.Rules(), p.Rules.Rules())
	assert.Equal(t, base.Commands.Commands(), p.Commands.Commands())
	assert.Equal(t, base.Boot, p.Boot)
}

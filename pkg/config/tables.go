package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/aretw0/sentinel/pkg/interpreter"
	"github.com/aretw0/sentinel/pkg/profile"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrInvalidTables wraps every failure to read, parse or validate a tables file.
var ErrInvalidTables = errors.New("invalid tables")

// TableFile is the on-disk shape of a persona. Omitted fields keep the base profile's values;
// rules and commands, when present, replace the base tables entirely.
type TableFile struct {
	Name        string           `mapstructure:"name" yaml:"name,omitempty"`
	Prompt      string           `mapstructure:"prompt" yaml:"prompt,omitempty"`
	Fallback    string           `mapstructure:"fallback" yaml:"fallback,omitempty"`
	Unavailable string           `mapstructure:"unavailable" yaml:"unavailable,omitempty"`
	Instruction string           `mapstructure:"instruction" yaml:"instruction,omitempty"`
	Boot        []string         `mapstructure:"boot" yaml:"boot,omitempty"`
	Rules       []domain.Rule    `mapstructure:"rules" yaml:"rules,omitempty"`
	Commands    []domain.Command `mapstructure:"commands" yaml:"commands,omitempty"`
}

// LoadProfile reads a YAML or JSON tables file over base.
func LoadProfile(path string, base profile.Profile) (profile.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("%w: %v", ErrInvalidTables, err)
	}
	return ParseProfile(data, strings.ToLower(filepath.Ext(path)), base)
}

// ParseProfile decodes tables from data. ext selects the format: ".json" or YAML otherwise.
func ParseProfile(data []byte, ext string, base profile.Profile) (profile.Profile, error) {
	raw := map[string]any{}
	if ext == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return profile.Profile{}, fmt.Errorf("%w: failed to parse json: %v", ErrInvalidTables, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return profile.Profile{}, fmt.Errorf("%w: failed to parse yaml: %v", ErrInvalidTables, err)
		}
	}

	var file TableFile
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &file,
	})
	if err != nil {
		return profile.Profile{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return profile.Profile{}, fmt.Errorf("%w: %v", ErrInvalidTables, err)
	}

	p, err := file.Apply(base)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("%w: %w", ErrInvalidTables, err)
	}
	return p, nil
}

// Apply overlays the file on base and validates the result.
func (f TableFile) Apply(base profile.Profile) (profile.Profile, error) {
	p := base
	setString(&p.Name, f.Name)
	setString(&p.Prompt, f.Prompt)
	setString(&p.Fallback, f.Fallback)
	setString(&p.Unavailable, f.Unavailable)
	setString(&p.Instruction, f.Instruction)
	if f.Boot != nil {
		p.Boot = f.Boot
	}

	if f.Rules != nil {
		rules, err := domain.NewRuleTable(f.Rules...)
		if err != nil {
			return profile.Profile{}, err
		}
		p.Rules = rules
	}

	if f.Commands != nil {
		cmds, err := domain.NewCommandTable(f.Commands...)
		if err != nil {
			return profile.Profile{}, err
		}
		p.Commands = withHelp(cmds)
	}

	if err := p.Validate(); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

// Dump renders p in the tables file format.
func Dump(p profile.Profile) ([]byte, error) {
	return yaml.Marshal(FromProfile(p))
}

// FromProfile is the inverse of Apply over an empty base.
func FromProfile(p profile.Profile) TableFile {
	return TableFile{
		Name:        p.Name,
		Prompt:      p.Prompt,
		Fallback:    p.Fallback,
		Unavailable: p.Unavailable,
		Instruction: p.Instruction,
		Boot:        p.Boot,
		Rules:       p.Rules.Rules(),
		Commands:    p.Commands.Commands(),
	}
}

// withHelp fills a reply-less "help" command with the listing of the other tokens.
func withHelp(table domain.CommandTable) domain.CommandTable {
	help, ok := table.Lookup(interpreter.HelpToken)
	if !ok || help.Effect != domain.EffectReply || help.Reply != "" {
		return table
	}
	cmds := table.Commands()
	for i := range cmds {
		if cmds[i].Token == interpreter.HelpToken {
			cmds[i].Reply = interpreter.Help(table)
		}
	}
	return domain.MustCommandTable(cmds...)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

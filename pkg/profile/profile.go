// Package profile bundles the tables and texts that give a Sentinel deployment its persona.
//
// The portfolio variants only differed in keywords and commands, so they are all
// instances of Profile rather than separate designs.
package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/sentinel/pkg/domain"
)

// Profile is the process-wide, read-only configuration of the chat and terminal widgets.
type Profile struct {
	// Name identifies the persona (used as a label in logs and /info).
	Name string

	// Prompt is the identity label prefixed to echoed terminal lines.
	Prompt string

	// Fallback is the chat reply when no rule matches.
	Fallback string

	// Unavailable is shown when the text-generation collaborator fails.
	Unavailable string

	// Instruction is the fixed style instruction sent to the collaborator.
	Instruction string

	// Boot lines seed a fresh terminal transcript.
	Boot []string

	Rules    domain.RuleTable
	Commands domain.CommandTable
}

// ErrInvalidProfile is returned by Validate.
var ErrInvalidProfile = errors.New("invalid profile")

// Validate checks the fields the engine cannot default.
// Rule and command tables are validated when they are built.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Fallback) == "" {
		return fmt.Errorf("%w: fallback response is required", ErrInvalidProfile)
	}
	for i, line := range p.Boot {
		if strings.ContainsAny(line, "\r\n") {
			return fmt.Errorf("%w: boot line %d spans several lines", ErrInvalidProfile, i)
		}
	}
	return nil
}

// BootEntries returns the boot banner as system transcript entries.
func (p Profile) BootEntries() []domain.Entry {
	out := make([]domain.Entry, len(p.Boot))
	for i, line := range p.Boot {
		out[i] = domain.Entry{Role: domain.RoleSystem, Text: line}
	}
	return out
}

package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// Effect is what a command does when invoked.
type Effect string

const (
	EffectReply Effect = "reply" // Print a fixed text
	EffectClear Effect = "clear" // Discard the transcript
	EffectEcho  Effect = "echo"  // Print the rest of the line
)

// Command maps an exact, lowercase token to an effect.
// Reply is only meaningful for EffectReply.
type Command struct {
	Token  string `json:"token" yaml:"token" mapstructure:"token"`
	Effect Effect `json:"effect" yaml:"effect" mapstructure:"effect"`
	Reply  string `json:"reply,omitempty" yaml:"reply,omitempty" mapstructure:"reply"`
}

// CommandTable holds commands keyed by token. Registration order is kept for listings.
type CommandTable struct {
	byToken map[string]Command
	order   []string
}

// NewCommandTable validates the commands and freezes them into a table.
func NewCommandTable(cmds ...Command) (CommandTable, error) {
	t := CommandTable{
		byToken: make(map[string]Command, len(cmds)),
		order:   make([]string, 0, len(cmds)),
	}
	for i, c := range cmds {
		token := strings.ToLower(c.Token)
		if token == "" {
			return CommandTable{}, fmt.Errorf("%w: command %d has an empty token", ErrInvalidCommand, i)
		}
		if strings.IndexFunc(token, unicode.IsSpace) >= 0 {
			return CommandTable{}, fmt.Errorf("%w: token %q contains whitespace", ErrInvalidCommand, token)
		}
		if _, dup := t.byToken[token]; dup {
			return CommandTable{}, fmt.Errorf("%w: token %q registered twice", ErrInvalidCommand, token)
		}
		switch c.Effect {
		case "":
			c.Effect = EffectReply
		case EffectReply, EffectClear, EffectEcho:
		default:
			return CommandTable{}, fmt.Errorf("%w: token %q has unknown effect %q", ErrInvalidCommand, token, c.Effect)
		}
		c.Token = token
		t.byToken[token] = c
		t.order = append(t.order, token)
	}
	return t, nil
}

// MustCommandTable is like NewCommandTable but panics on invalid commands.
func MustCommandTable(cmds ...Command) CommandTable {
	t, err := NewCommandTable(cmds...)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the command registered under token.
func (t CommandTable) Lookup(token string) (Command, bool) {
	c, ok := t.byToken[token]
	return c, ok
}

// Tokens returns the registered tokens in registration order.
func (t CommandTable) Tokens() []string {
	return append([]string(nil), t.order...)
}

// Commands returns the registered commands in registration order.
func (t CommandTable) Commands() []Command {
	out := make([]Command, 0, len(t.order))
	for _, tok := range t.order {
		out = append(out, t.byToken[tok])
	}
	return out
}

// EchoTokens returns the tokens registered with EffectEcho, in registration order.
func (t CommandTable) EchoTokens() []string {
	var out []string
	for _, tok := range t.order {
		if t.byToken[tok].Effect == EffectEcho {
			out = append(out, tok)
		}
	}
	return out
}

// Len returns the number of commands.
func (t CommandTable) Len() int {
	return len(t.order)
}

// Package interpreter implements the toy command interpreter behind the fake terminal.
//
// The interpreter never fails: unknown commands are reported as ordinary output
// ("ERR: <cmd> NOT_FOUND") so every submission produces a transcript line.
package interpreter

import (
	"fmt"
	"strings"

	"github.com/aretw0/sentinel/pkg/domain"
)

// Interpreter binds a command table to the identity label shown before echoed input.
type Interpreter struct {
	Table  domain.CommandTable
	Prompt string
}

// New creates an Interpreter. An empty prompt falls back to domain.DefaultPrompt.
func New(table domain.CommandTable, prompt string) *Interpreter {
	if prompt == "" {
		prompt = domain.DefaultPrompt
	}
	return &Interpreter{Table: table, Prompt: prompt}
}

// Execute interprets one line of input with the default prompt.
// history is accepted for symmetry with callers and is never read or modified.
func Execute(input string, table domain.CommandTable, history []domain.Entry) domain.CommandResult {
	return New(table, "").Execute(input, history)
}

// Execute interprets one line of input.
func (it *Interpreter) Execute(input string, _ []domain.Entry) domain.CommandResult {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return domain.Appended()
	}
	cmd := strings.ToLower(trimmed)
	prompt := domain.Entry{Role: domain.RoleUser, Text: it.PromptLine(input)}

	if c, ok := it.Table.Lookup(cmd); ok {
		switch c.Effect {
		case domain.EffectClear:
			return domain.Cleared()
		case domain.EffectReply:
			return domain.Appended(prompt, reply(c.Reply))
		case domain.EffectEcho:
			// Bare echo prints an empty line.
			return domain.Appended(prompt, reply(""))
		}
	}

	for _, tok := range it.Table.EchoTokens() {
		prefix := tok + " "
		if strings.HasPrefix(cmd, prefix) {
			return domain.Appended(prompt, reply(remainder(trimmed, cmd, prefix)))
		}
	}

	return domain.Appended(prompt, reply(fmt.Sprintf(domain.NotFoundFormat, cmd)))
}

// PromptLine formats the echoed user line: the identity label and the raw input.
func (it *Interpreter) PromptLine(input string) string {
	return it.Prompt + " " + strings.TrimRight(input, "\r\n")
}

// HelpToken is the command that lists the others.
const HelpToken = "help"

// Help lists the registered tokens in registration order, leaving out HelpToken itself.
func Help(table domain.CommandTable) string {
	tokens := make([]string, 0, len(table.Tokens()))
	for _, tok := range table.Tokens() {
		if tok != HelpToken {
			tokens = append(tokens, tok)
		}
	}
	return "AVAILABLE: " + strings.Join(tokens, ", ")
}

// remainder returns the text after prefix, preserving the original casing when the
// lowercased line kept the same byte offsets.
func remainder(original, lowered, prefix string) string {
	if len(original) >= len(prefix) && strings.EqualFold(original[:len(prefix)], prefix) {
		return original[len(prefix):]
	}
	return lowered[len(prefix):]
}

func reply(text string) domain.Entry {
	return domain.Entry{Role: domain.RoleSystem, Text: text}
}

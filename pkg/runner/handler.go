package runner

import (
	"context"

	"github.com/aretw0/sentinel/pkg/domain"
)

// SignalTyping is sent while a chat reply is being prepared.
const SignalTyping = "typing"

// TypingIndicator is what text front ends show for SignalTyping.
const TypingIndicator = "SENTINEL_PROCESSING_PACKET..."

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents transcript entries of a channel.
	Output(ctx context.Context, ch domain.Channel, entries []domain.Entry) error

	// Input reads one line from the user. prompt is a hint that handlers may display.
	Input(ctx context.Context, prompt string) (string, error)

	// Signal notifies the handler of a transient event (e.g. SignalTyping).
	Signal(ctx context.Context, name string) error

	// Clear tells the user the channel's history was discarded.
	Clear(ctx context.Context, ch domain.Channel) error

	// SystemOutput presents a meta-message (errors, status) distinct from transcript content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms chat replies before they are printed (e.g. markdown to ANSI).
type ContentRenderer func(string) (string, error)

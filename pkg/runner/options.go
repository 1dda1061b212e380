package runner

import (
	"log/slog"
	"time"
)

// DefaultTypingDelay is how long chat replies take to "arrive" in interactive mode.
const DefaultTypingDelay = 1200 * time.Millisecond

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithMode selects the channel the loop drives.
func WithMode(mode Mode) Option {
	return func(r *Runner) {
		r.Mode = mode
	}
}

// WithSessionID resumes (or starts) a named session instead of a fresh random one.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.SessionID = id
		}
	}
}

// WithTypingDelay overrides DefaultTypingDelay. Zero disables the pause.
func WithTypingDelay(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.TypingDelay = d
		}
	}
}

// WithHeadless disables the replay of the existing transcript on start.
func WithHeadless(headless bool) Option {
	return func(r *Runner) {
		r.Headless = headless
	}
}

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/sentinel/pkg/console"
	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/google/uuid"
)

// Mode selects the channel a Runner drives.
type Mode string

const (
	ModeChat     Mode = "chat"
	ModeTerminal Mode = "terminal"
)

// Channel returns the transcript channel of the mode.
func (m Mode) Channel() domain.Channel {
	if m == ModeTerminal {
		return domain.ChannelTerminal
	}
	return domain.ChannelChat
}

// Runner handles the interactive loop over a console using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	Console   *console.Console
	Handler   IOHandler
	Mode      Mode
	SessionID string

	// TypingDelay is the minimum time between a chat message and its reply on screen.
	// It never changes the reply.
	TypingDelay time.Duration

	// Headless skips replaying the existing transcript on start.
	Headless bool

	Logger *slog.Logger

	// sleep waits for d or until ctx is done. Overridden by tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a Runner over cons with a text handler on Stdin/Stdout and a fresh session.
func NewRunner(cons *console.Console, opts ...Option) *Runner {
	r := &Runner{
		Console:     cons,
		Mode:        ModeChat,
		SessionID:   uuid.NewString(),
		TypingDelay: DefaultTypingDelay,
		Logger:      slog.New(slog.DiscardHandler),
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r
}

// Run drives the loop until EOF, "exit"/"quit", an interrupt, or ctx cancellation.
// Turn failures (e.g. a store outage) are reported to the user and the loop continues.
func (r *Runner) Run(ctx context.Context) error {
	ch := r.Mode.Channel()

	if !r.Headless {
		t, err := r.Console.Transcript(ctx, r.SessionID, ch)
		if err != nil {
			return fmt.Errorf("failed to open session: %w", err)
		}
		if err := r.Handler.Output(ctx, ch, t.Entries); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	for {
		line, err := r.Handler.Input(signals.Context(), r.prompt())
		if err != nil {
			signals.CheckRace()
			if signals.Interrupted() {
				r.Logger.Debug("runner interrupted", "session_id", r.SessionID)
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		if r.isExit(line) {
			return nil
		}

		if err := r.turn(ctx, ch, line); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.Logger.Warn("turn failed", "session_id", r.SessionID, "err", err)
			if err := r.Handler.SystemOutput(ctx, err.Error()); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
		}
	}
}

func (r *Runner) turn(ctx context.Context, ch domain.Channel, line string) error {
	if ch == domain.ChannelTerminal {
		turn, err := r.Console.Terminal(ctx, r.SessionID, line)
		if err != nil {
			return err
		}
		if turn.Result.IsCleared() {
			return r.Handler.Clear(ctx, ch)
		}
		return r.Handler.Output(ctx, ch, systemEntries(turn.Result.Entries))
	}

	if strings.TrimSpace(line) == "" {
		return nil
	}

	start := time.Now()
	if err := r.Handler.Signal(ctx, SignalTyping); err != nil {
		return err
	}
	turn, err := r.Console.Chat(ctx, r.SessionID, line)
	if err != nil {
		return err
	}
	if wait := r.TypingDelay - time.Since(start); wait > 0 {
		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}
	return r.Handler.Output(ctx, ch, systemEntries(turn.Entries))
}

// isExit reports whether line leaves the loop. In terminal mode a profile command
// registered as "exit" or "quit" runs instead.
func (r *Runner) isExit(line string) bool {
	cmd := strings.ToLower(strings.TrimSpace(line))
	if cmd != "exit" && cmd != "quit" {
		return false
	}
	if r.Mode == ModeTerminal {
		if _, ok := r.Console.Engine().Profile().Commands.Lookup(cmd); ok {
			return false
		}
	}
	return true
}

func (r *Runner) prompt() string {
	if r.Mode == ModeTerminal {
		return r.Console.Engine().Profile().Prompt + " "
	}
	return "> "
}

// systemEntries drops the user's own line, which is already on screen.
func systemEntries(entries []domain.Entry) []domain.Entry {
	out := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Role == domain.RoleSystem {
			out = append(out, e)
		}
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Package console runs chat and terminal turns against per-session transcripts.
//
// A turn is one read-modify-write cycle under the session lock: load or start the
// transcript, compute the new entries with the engine, apply them and save.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/sentinel"
	"github.com/aretw0/sentinel/internal/logging"
	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/aretw0/sentinel/pkg/session"
)

// Sanitizer cleans raw user input before it reaches the engine.
type Sanitizer func(string) (string, error)

// Update describes a change to a transcript. Subscribers receive it after the save.
type Update struct {
	SessionID string            `json:"session_id"`
	Channel   domain.Channel    `json:"channel"`
	Kind      domain.ResultKind `json:"kind"`
	Entries   []domain.Entry    `json:"entries"`
}

// Listener receives transcript updates. It must not block.
type Listener func(Update)

// ChatTurn is the outcome of one chat message.
type ChatTurn struct {
	SessionID  string             `json:"session_id"`
	Reply      sentinel.Reply     `json:"reply"`
	Entries    []domain.Entry     `json:"entries"` // appended by this turn; empty when skipped
	Skipped    bool               `json:"skipped,omitempty"`
	Transcript *domain.Transcript `json:"transcript"`
}

// TerminalTurn is the outcome of one line of terminal input.
type TerminalTurn struct {
	SessionID  string               `json:"session_id"`
	Result     domain.CommandResult `json:"result"`
	Transcript *domain.Transcript   `json:"transcript"`
}

// Console binds an engine to a session manager.
type Console struct {
	engine    *sentinel.Engine
	sessions  *session.Manager
	sanitize  Sanitizer
	listeners []Listener
	logger    *slog.Logger
}

// Option configures the Console.
type Option func(*Console)

// WithSanitizer filters every message and terminal line. Rejections fail the turn.
func WithSanitizer(s Sanitizer) Option {
	return func(c *Console) {
		c.sanitize = s
	}
}

// WithListener subscribes l to transcript updates.
func WithListener(l Listener) Option {
	return func(c *Console) {
		c.listeners = append(c.listeners, l)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) {
		c.logger = logger
	}
}

// New creates a Console.
func New(engine *sentinel.Engine, sessions *session.Manager, opts ...Option) *Console {
	c := &Console{
		engine:   engine,
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Engine returns the underlying engine.
func (c *Console) Engine() *sentinel.Engine {
	return c.engine
}

// Sessions returns the underlying session manager.
func (c *Console) Sessions() *session.Manager {
	return c.sessions
}

// Subscribe adds a listener after construction.
// Not safe to call concurrently with turns.
func (c *Console) Subscribe(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Chat appends the user's message and the engine's reply to the session's chat transcript.
// A blank message is ignored.
func (c *Console) Chat(ctx context.Context, sessionID, message string) (ChatTurn, error) {
	message, err := c.clean(message)
	if err != nil {
		return ChatTurn{}, err
	}
	turn := ChatTurn{SessionID: sessionID}

	if strings.TrimSpace(message) == "" {
		turn.Skipped = true
		turn.Entries = []domain.Entry{}
		if turn.Transcript, err = c.Transcript(ctx, sessionID, domain.ChannelChat); err != nil {
			return ChatTurn{}, fmt.Errorf("chat turn failed: %w", err)
		}
		c.logger.Debug("chat turn", "session_id", sessionID, "skipped", true)
		return turn, nil
	}

	t, err := c.sessions.Update(ctx, sessionID, domain.ChannelChat, nil, func(t *domain.Transcript) error {
		// The reply is computed under the session lock so concurrent messages
		// keep their question/answer pairs adjacent.
		turn.Reply = c.engine.Ask(ctx, message)
		turn.Entries = []domain.Entry{
			{Role: domain.RoleUser, Text: message},
			{Role: domain.RoleSystem, Text: turn.Reply.Text},
		}
		t.Append(turn.Entries...)
		turn.Entries = append([]domain.Entry(nil), t.Entries[len(t.Entries)-2:]...)
		return nil
	})
	if err != nil {
		return ChatTurn{}, fmt.Errorf("chat turn failed: %w", err)
	}
	turn.Transcript = t

	c.logger.Debug("chat turn", "session_id", sessionID, "source", turn.Reply.Source)
	c.notify(Update{SessionID: sessionID, Channel: domain.ChannelChat, Kind: domain.ResultAppended, Entries: turn.Entries})
	return turn, nil
}

// Terminal interprets one line against the session's terminal transcript.
// A new terminal transcript starts with the boot banner.
func (c *Console) Terminal(ctx context.Context, sessionID, input string) (TerminalTurn, error) {
	input, err := c.clean(input)
	if err != nil {
		return TerminalTurn{}, err
	}
	turn := TerminalTurn{SessionID: sessionID}

	t, err := c.sessions.Update(ctx, sessionID, domain.ChannelTerminal, c.engine.Boot(), func(t *domain.Transcript) error {
		turn.Result = c.engine.Exec(ctx, input, t.Snapshot().Entries)
		turn.Result.Apply(t)
		if !turn.Result.IsCleared() && len(turn.Result.Entries) > 0 {
			turn.Result.Entries = append([]domain.Entry(nil), t.Entries[len(t.Entries)-len(turn.Result.Entries):]...)
		}
		return nil
	})
	if err != nil {
		return TerminalTurn{}, fmt.Errorf("terminal turn failed: %w", err)
	}
	turn.Transcript = t

	c.logger.Debug("terminal turn", "session_id", sessionID, "result", turn.Result.Kind)
	if turn.Result.IsCleared() || len(turn.Result.Entries) > 0 {
		c.notify(Update{SessionID: sessionID, Channel: domain.ChannelTerminal, Kind: turn.Result.Kind, Entries: turn.Result.Entries})
	}
	return turn, nil
}

// Transcript returns the session's transcript for ch. A session that has none yet gets
// the transcript it would start with; nothing is stored.
func (c *Console) Transcript(ctx context.Context, sessionID string, ch domain.Channel) (*domain.Transcript, error) {
	t, err := c.sessions.Load(ctx, sessionID, ch)
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return t, err
	}
	t = domain.NewTranscript(ch)
	if ch == domain.ChannelTerminal {
		t.Append(c.engine.Boot()...)
	}
	return t, nil
}

// Reset drops both transcripts of the session.
func (c *Console) Reset(ctx context.Context, sessionID string) error {
	if err := c.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	c.logger.Info("session reset", "session_id", sessionID)
	for _, ch := range []domain.Channel{domain.ChannelChat, domain.ChannelTerminal} {
		c.notify(Update{SessionID: sessionID, Channel: ch, Kind: domain.ResultCleared, Entries: []domain.Entry{}})
	}
	return nil
}

func (c *Console) clean(s string) (string, error) {
	if c.sanitize == nil {
		return s, nil
	}
	return c.sanitize(s)
}

func (c *Console) notify(u Update) {
	for _, l := range c.listeners {
		l(u)
	}
}

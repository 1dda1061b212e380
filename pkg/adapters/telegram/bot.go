// Package telegram serves the chat and terminal widgets as a Telegram bot.
//
// Each Telegram chat is one session. Messages starting with "$" are terminal
// lines, "/reset" drops the session and everything else is chat.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aretw0/sentinel/internal/logging"
	"github.com/aretw0/sentinel/pkg/console"
	"github.com/aretw0/sentinel/pkg/domain"
)

const (
	TerminalPrefix = "$"
	resetCmd       = "reset"
	startCmd       = "start"

	resetReply   = "SESSION PURGED. CHANNELS RESET."
	clearedReply = "TERMINAL BUFFER CLEARED."
	failureReply = "ERR_INTERNAL: Transmission failed."
)

// Bot relays Telegram messages to a Console.
type Bot struct {
	api     updater
	out     sender
	console *console.Console
	logger  *slog.Logger
}

// Option configures the Bot.
type Option func(*Bot)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// New connects to the Bot API with token.
func New(token string, cons *console.Console, opts ...Option) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	return newBot(api, api, cons, opts...), nil
}

func newBot(api updater, out sender, cons *console.Console, opts ...Option) *Bot {
	b := &Bot{
		api:     api,
		out:     out,
		console: cons,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start long-polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()
	b.logger.Info("telegram bot polling")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				b.HandleMessage(ctx, update.Message)
			}
		}
	}
}

// SessionID maps a Telegram chat to a session.
func SessionID(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// HandleMessage answers one incoming message.
func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	sessionID := SessionID(chatID)
	b.logger.Debug("telegram message", "session_id", sessionID, "size", len(msg.Text))

	switch {
	case msg.IsCommand() && msg.Command() == resetCmd:
		if err := b.console.Reset(ctx, sessionID); err != nil {
			b.fail(chatID, "reset", err)
			return
		}
		b.send(chatID, resetReply)

	case msg.IsCommand() && msg.Command() == startCmd:
		t, err := b.console.Transcript(ctx, sessionID, domain.ChannelTerminal)
		if err != nil {
			b.fail(chatID, "start", err)
			return
		}
		b.send(chatID, strings.Join(t.Texts(), "\n"))

	case strings.HasPrefix(msg.Text, TerminalPrefix):
		turn, err := b.console.Terminal(ctx, sessionID, strings.TrimPrefix(msg.Text, TerminalPrefix))
		if err != nil {
			b.fail(chatID, "terminal", err)
			return
		}
		if turn.Result.IsCleared() {
			b.send(chatID, clearedReply)
			return
		}
		if len(turn.Result.Entries) > 0 {
			b.send(chatID, strings.Join(turn.Result.Texts(), "\n"))
		}

	default:
		b.typing(chatID)
		turn, err := b.console.Chat(ctx, sessionID, msg.Text)
		if err != nil {
			b.fail(chatID, "chat", err)
			return
		}
		if !turn.Skipped {
			b.send(chatID, turn.Reply.Text)
		}
	}
}

func (b *Bot) typing(chatID int64) {
	if _, err := b.out.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug("failed to send typing action", "error", err)
	}
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.out.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) fail(chatID int64, op string, err error) {
	b.logger.Warn("telegram turn failed", "op", op, "chat_id", chatID, "error", err)
	b.send(chatID, failureReply)
}

package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sentinel"
	"github.com/aretw0/sentinel/pkg/adapters/memory"
	"github.com/aretw0/sentinel/pkg/console"
	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/aretw0/sentinel/pkg/session"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

// texts returns the text of every sent message, skipping chat actions.
func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

type fakeUpdater struct {
	ch      chan tgbotapi.Update
	stopped bool
}

func (f *fakeUpdater) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.ch
}

func (f *fakeUpdater) StopReceivingUpdates() {
	f.stopped = true
}

func newTestBot(t *testing.T) (*Bot, *fakeSender, *fakeUpdater) {
	t.Helper()
	eng, err := sentinel.New()
	require.NoError(t, err)
	cons := console.New(eng, session.NewManager(memory.NewStore()))
	out := &fakeSender{}
	up := &fakeUpdater{ch: make(chan tgbotapi.Update, 4)}
	return newBot(up, out, cons), out, up
}

func message(chatID int64, text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
	if len(text) > 1 && text[0] == '/' {
		end := len(text)
		for i, r := range text {
			if r == ' ' {
				end = i
				break
			}
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return msg
}

func TestHandleMessage_Chat(t *testing.T) {
	b, out, _ := newTestBot(t)

	b.HandleMessage(context.Background(), message(42, "hire you?"))

	require.Len(t, out.sent, 2)
	action, ok := out.sent[0].(tgbotapi.ChatActionConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.ChatTyping, action.Action)
	assert.Equal(t, []string{"COMMS_PROTOCOL: Encrypted. EMAIL: waseeq@sec-node.io. LINKEDIN: /in/waseeq-sec."}, out.texts())

	tr, err := b.console.Transcript(context.Background(), "42", domain.ChannelChat)
	require.NoError(t, err)
	assert.Len(t, tr.Entries, 2)
}

func TestHandleMessage_Terminal(t *testing.T) {
	b, out, _ := newTestBot(t)
	ctx := context.Background()

	b.HandleMessage(ctx, message(7, "$status"))
	b.HandleMessage(ctx, message(7, "$ nmap"))
	b.HandleMessage(ctx, message(7, "$clear"))

	assert.Equal(t, []string{
		"user@waseeq:~$ status\nSYSTEM: NOMINAL. THREAT_LEVEL: LOW.",
		"user@waseeq:~$  nmap\nERR: nmap NOT_FOUND",
		clearedReply,
	}, out.texts())
}

func TestHandleMessage_StartAndReset(t *testing.T) {
	b, out, _ := newTestBot(t)
	ctx := context.Background()

	b.HandleMessage(ctx, message(-100, "/start"))
	require.Len(t, out.texts(), 1)
	assert.Contains(t, out.texts()[0], "INITIALIZING WASEEQ_SHELL")

	b.HandleMessage(ctx, message(-100, "hello"))
	b.HandleMessage(ctx, message(-100, "/reset"))
	assert.Equal(t, resetReply, out.texts()[len(out.texts())-1])

	ids, err := b.console.Sessions().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestHandleMessage_BlankChatSendsNothing(t *testing.T) {
	b, out, _ := newTestBot(t)
	b.HandleMessage(context.Background(), message(1, "   "))
	assert.Empty(t, out.texts())
}

func TestStart_StopsOnCancel(t *testing.T) {
	b, out, up := newTestBot(t)
	ctx, cancel := context.WithCancel(context.Background())

	up.ch <- tgbotapi.Update{Message: message(5, "hi")}
	done := make(chan error, 1)
	go func() { done <- b.Start(ctx) }()

	assert.Eventually(t, func() bool { return len(out.texts()) == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.True(t, up.stopped)
}

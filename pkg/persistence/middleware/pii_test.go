package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/aretw0/sentinel/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := NewMockStore()
	store := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)(underlying)
	ctx := context.Background()

	tr := domain.NewTranscript(domain.ChannelChat)
	tr.Append(
		domain.Entry{Role: domain.RoleUser, Text: "mail me at jane.doe@example.com or call 555 123 4567"},
		domain.Entry{Role: domain.RoleSystem, Text: "COMMS_PROTOCOL: EMAIL: waseeq@sec-node.io"},
	)

	require.NoError(t, store.Save(ctx, "pii/chat", tr))

	assert.Contains(t, tr.Entries[0].Text, "jane.doe@example.com", "caller transcript must not be modified")

	stored, err := underlying.Load(ctx, "pii/chat")
	require.NoError(t, err)
	assert.Equal(t, "mail me at *** or call ***", stored.Entries[0].Text)
	assert.Equal(t, "COMMS_PROTOCOL: EMAIL: waseeq@sec-node.io", stored.Entries[1].Text, "system entries are kept")
}

func TestChain_Order(t *testing.T) {
	underlying := NewMockStore()
	key := generateKey(t)
	store := middleware.Chain(underlying,
		middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "c/chat", chatTranscript("reach me: a@b.io")))

	loaded, err := store.Load(ctx, "c/chat")
	require.NoError(t, err)
	assert.Equal(t, []string{"reach me: ***"}, loaded.Texts())
}

func TestPIIMiddleware_MasksEchoedInput(t *testing.T) {
	underlying := NewMockStore()
	store := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)(underlying)
	ctx := context.Background()

	tr := domain.NewTranscript(domain.ChannelTerminal)
	tr.Append(
		domain.Entry{Role: domain.RoleSystem, Text: "CONTACT: waseeq@sec-node.io"},
		domain.Entry{Role: domain.RoleUser, Text: "user@waseeq:~$ echo alice@example.com 4111 1111 1111 1111"},
		domain.Entry{Role: domain.RoleSystem, Text: "alice@example.com 4111 1111 1111 1111"},
	)

	require.NoError(t, store.Save(ctx, "echo/terminal", tr))

	stored, err := underlying.Load(ctx, "echo/terminal")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CONTACT: waseeq@sec-node.io",
		"user@waseeq:~$ echo *** ***",
		"*** ***",
	}, stored.Texts())
}

package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTranscriptStoreContract runs a suite of tests to verify that a TranscriptStore
// implementation adheres to the defined interface contract.
func RunTranscriptStoreContract(t *testing.T, store TranscriptStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405") + "/chat"

	t.Run("Save and Load", func(t *testing.T) {
		tr := domain.NewTranscript(domain.ChannelChat)
		tr.Append(
			domain.Entry{Role: domain.RoleUser, Text: "hello"},
			domain.Entry{Role: domain.RoleSystem, Text: "SENTINEL_GREETING"},
		)

		require.NoError(t, store.Save(ctx, key, tr), "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.ChannelChat, loaded.Channel)
		assert.Equal(t, []string{"hello", "SENTINEL_GREETING"}, loaded.Texts())
		assert.Equal(t, domain.RoleUser, loaded.Entries[0].Role)
	})

	t.Run("Load Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		loaded.Append(domain.Entry{Role: domain.RoleUser, Text: "local only"})

		again, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Len(t, again.Entries, 2, "mutating a loaded transcript must not change the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, domain.NewTranscript(domain.ChannelChat)))

		require.NoError(t, store.Delete(ctx, key), "Delete should not return error")

		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		k1 := key + "-1"
		k2 := key + "-2"
		_ = store.Save(ctx, k1, domain.NewTranscript(domain.ChannelChat))
		_ = store.Save(ctx, k2, domain.NewTranscript(domain.ChannelTerminal))
		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}

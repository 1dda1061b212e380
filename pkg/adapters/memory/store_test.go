package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/sentinel/pkg/adapters/memory"
	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/aretw0/sentinel/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunTranscriptStoreContract(t, memory.NewStore())
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStore_TTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := memory.NewStore(memory.WithTTL(time.Minute), memory.WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1/chat", domain.NewTranscript(domain.ChannelChat)))

	clock.Advance(30 * time.Second)
	require.NoError(t, store.Save(ctx, "s2/chat", domain.NewTranscript(domain.ChannelChat)))

	_, err := store.Load(ctx, "s1/chat")
	assert.NoError(t, err)

	clock.Advance(45 * time.Second)

	_, err = store.Load(ctx, "s1/chat")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s2/chat"}, keys)

	removed, err := store.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestMemoryStore_NoTTLNeverExpires(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := memory.NewStore(memory.WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k", domain.NewTranscript(domain.ChannelTerminal)))
	clock.Advance(24 * time.Hour * 365)

	_, err := store.Load(ctx, "k")
	assert.NoError(t, err)

	removed, _ := store.Prune(ctx)
	assert.Zero(t, removed)
}

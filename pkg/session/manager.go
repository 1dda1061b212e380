package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/sentinel/internal/logging"
	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/aretw0/sentinel/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a session.
const DefaultLockTTL = 30 * time.Second

// ErrInvalidSession is returned for empty session IDs, IDs containing the key separator,
// and unknown channels.
var ErrInvalidSession = errors.New("invalid session")

const keySeparator = "/"

// Key composes the store key of a session channel.
func Key(sessionID string, ch domain.Channel) string {
	return sessionID + keySeparator + string(ch)
}

// SplitKey is the inverse of Key.
func SplitKey(key string) (sessionID string, ch domain.Channel, ok bool) {
	i := strings.LastIndex(key, keySeparator)
	if i <= 0 {
		return "", "", false
	}
	ch = domain.Channel(key[i+1:])
	if !ch.Valid() {
		return "", "", false
	}
	return key[:i], ch, true
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// Both channels of a session share one lock. Unused locks are garbage collected
// by reference counting.
type Manager struct {
	store ports.TranscriptStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL for distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given transcript store.
func NewManager(store ports.TranscriptStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Load retrieves an existing transcript. Returns domain.ErrSessionNotFound if there is none.
func (m *Manager) Load(ctx context.Context, sessionID string, ch domain.Channel) (*domain.Transcript, error) {
	if err := validate(sessionID, ch); err != nil {
		return nil, err
	}
	var t *domain.Transcript
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		t, err = m.store.Load(ctx, Key(sessionID, ch))
		return err
	})
	return t, err
}

// LoadOrStart loads a transcript, or starts one seeded with seed and persists it.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID string, ch domain.Channel, seed []domain.Entry) (*domain.Transcript, error) {
	return m.Update(ctx, sessionID, ch, seed, nil)
}

// Update runs a read-modify-write cycle on a transcript under the session lock.
// A missing transcript is started from seed. fn may be nil. The transcript is saved
// only if fn succeeds.
func (m *Manager) Update(ctx context.Context, sessionID string, ch domain.Channel, seed []domain.Entry, fn func(*domain.Transcript) error) (*domain.Transcript, error) {
	if err := validate(sessionID, ch); err != nil {
		return nil, err
	}
	var t *domain.Transcript
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		key := Key(sessionID, ch)

		loaded, err := m.store.Load(ctx, key)
		switch {
		case err == nil:
			t = loaded
		case errors.Is(err, domain.ErrSessionNotFound):
			t = domain.NewTranscript(ch)
			t.Append(seed...)
			m.logger.Debug("session started", "session_id", sessionID, "channel", ch)
		default:
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		if fn != nil {
			if err := fn(t); err != nil {
				return err
			}
		}

		if err := m.store.Save(ctx, key, t); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Save persists the transcript under its own channel.
func (m *Manager) Save(ctx context.Context, sessionID string, t *domain.Transcript) error {
	if err := validate(sessionID, t.Channel); err != nil {
		return err
	}
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, Key(sessionID, t.Channel), t)
	})
}

// Delete removes both channels of the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	if err := validate(sessionID, domain.ChannelChat); err != nil {
		return err
	}
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		for _, ch := range []domain.Channel{domain.ChannelChat, domain.ChannelTerminal} {
			if err := m.store.Delete(ctx, Key(sessionID, ch)); err != nil {
				return fmt.Errorf("failed to delete %s transcript: %w", ch, err)
			}
		}
		return nil
	})
}

// List returns the IDs of sessions with at least one live transcript, sorted.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	keys, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(keys))
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		id, _, ok := SplitKey(k)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Store returns the underlying transcript store.
func (m *Manager) Store() ports.TranscriptStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func validate(sessionID string, ch domain.Channel) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("%w: empty session id", ErrInvalidSession)
	}
	if strings.Contains(sessionID, keySeparator) {
		return fmt.Errorf("%w: session id %q contains %q", ErrInvalidSession, sessionID, keySeparator)
	}
	if !ch.Valid() {
		return fmt.Errorf("%w: unknown channel %q", ErrInvalidSession, ch)
	}
	return nil
}

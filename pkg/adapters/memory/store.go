package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/sentinel/pkg/domain"
)

type item struct {
	transcript *domain.Transcript
	expiresAt  time.Time // zero means no expiry
}

// Store implements ports.TranscriptStore in memory.
// Safe for concurrent use. Contents are lost when the process exits.
type Store struct {
	data map[string]item
	mu   sync.RWMutex
	ttl  time.Duration
	now  func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithTTL expires transcripts that have not been saved for ttl.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]item),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores a copy of the transcript.
func (s *Store) Save(ctx context.Context, key string, t *domain.Transcript) error {
	it := item{transcript: t.Snapshot()}
	if s.ttl > 0 {
		it.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = it
	return nil
}

// Load returns a copy so callers can't mutate the stored transcript by pointer.
func (s *Store) Load(ctx context.Context, key string) (*domain.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.data[key]
	if !ok || s.expired(it) {
		return nil, domain.ErrSessionNotFound
	}
	return it.transcript.Snapshot(), nil
}

// Delete removes the transcript.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the keys of live transcripts.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k, it := range s.data {
		if !s.expired(it) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Prune drops expired transcripts and returns how many were removed.
func (s *Store) Prune(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, it := range s.data {
		if s.expired(it) {
			delete(s.data, k)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) expired(it item) bool {
	return !it.expiresAt.IsZero() && !s.now().Before(it.expiresAt)
}

package middleware_test

import (
	"context"

	"github.com/aretw0/sentinel/pkg/domain"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string]*domain.Transcript
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.Transcript),
	}
}

func (s *MockStore) Save(ctx context.Context, key string, t *domain.Transcript) error {
	s.data[key] = t.Snapshot()
	return nil
}

func (s *MockStore) Load(ctx context.Context, key string) (*domain.Transcript, error) {
	t, ok := s.data[key]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return t.Snapshot(), nil
}

func (s *MockStore) Delete(ctx context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

package ports

import (
	"context"

	"github.com/aretw0/sentinel/pkg/domain"
)

// TranscriptStore defines the interface for keeping session transcripts.
// Keys are opaque to the store; the session layer composes them from session ID and channel.
type TranscriptStore interface {
	// Save persists the transcript under key.
	Save(ctx context.Context, key string, t *domain.Transcript) error

	// Load retrieves the transcript stored under key.
	// Returns domain.ErrSessionNotFound if nothing is stored.
	Load(ctx context.Context, key string) (*domain.Transcript, error)

	// Delete removes the transcript stored under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys of live transcripts.
	List(ctx context.Context) ([]string, error)
}

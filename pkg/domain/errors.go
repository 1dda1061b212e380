package domain

import "errors"

// ErrInvalidRule is returned when a rule has an empty keyword set, an empty keyword,
// or the same keyword twice.
var ErrInvalidRule = errors.New("invalid rule")

// ErrInvalidCommand is returned when a command token is empty, contains whitespace,
// or is registered twice.
var ErrInvalidCommand = errors.New("invalid command")

// ErrCollaboratorUnavailable is returned when the text-generation collaborator fails or times out.
// It never reaches users: callers substitute a fixed message.
var ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

// ErrSessionNotFound is returned when a transcript cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

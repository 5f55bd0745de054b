package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned, wrapped, when a key has no stored value.
var ErrNotFound = errors.New("not found")

// KVStore persists opaque string values under string keys. Implementations
// must be safe for concurrent use.
type KVStore interface {
	// Get returns the stored value, or an error wrapping ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

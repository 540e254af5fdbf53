// Package storage is the persistence layer of saved games: a key-value Store
// abstraction with interchangeable backends, and a Manager that serializes values
// to JSON, exports and imports whole snapshots, validates saved data, and reports
// diagnostics.
package storage

import (
	"context"
	"errors"
)

// ErrCorrupt is returned by a Store when a stored value fails its integrity check.
var ErrCorrupt = errors.New("stored value is corrupt")

// ErrClosed is returned by a Store used after Close.
var ErrClosed = errors.New("store is closed")

// Store is a durable key-value namespace.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key and whether it exists.
	//
	// Postcondition: a missing key returns (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes keys in one transaction where the backend supports it.
	// Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// Close releases the backend.
	Close() error
}

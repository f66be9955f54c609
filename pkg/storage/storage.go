// Package storage defines the persisted key-value surface backing the cart
// store, the offline queue, the session blob, and the read caches. Values are
// opaque serialized blobs; the profile behaves as a single-writer store with
// last-write-wins semantics.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// Store is the adapter injected into every stateful component so tests run
// against memory and production runs against the sqlite profile.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

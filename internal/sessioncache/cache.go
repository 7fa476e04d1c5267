// Package sessioncache provides the durable blob store for normalized
// session data, keyed by (season, round, session type).
package sessioncache

import (
	"context"
	"errors"
	"fmt"

	"github.com/fortuna/apex/internal/timing"
)

// ErrCacheMiss reports that no entry exists for the requested key. It is
// recoverable: the loader reacts by fetching from the remote source.
var ErrCacheMiss = errors.New("session cache miss")

// StorageError reports an I/O failure in the cache itself. The pipeline may
// still proceed with in-memory data; only caching is lost for the key.
type StorageError struct {
	Op  string
	Key timing.SessionKey
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("session cache %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Cache is the store contract injected into the session loader. Writes are
// atomic with respect to concurrent reads of the same key: a reader never
// observes a partially written blob. There is no TTL and no eviction;
// historical sessions are immutable once completed.
type Cache interface {
	Has(ctx context.Context, key timing.SessionKey) (bool, error)
	Read(ctx context.Context, key timing.SessionKey) ([]byte, error)
	Write(ctx context.Context, key timing.SessionKey, blob []byte) error
}

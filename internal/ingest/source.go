// Package ingest loads session data through the cache, coalescing duplicate
// fetches and normalizing raw remote records on the way in.
package ingest

import (
	"context"
	"fmt"

	"github.com/fortuna/apex/internal/timing"
)

// Source is the abstract fetch-by-key contract for a remote timing data
// provider. The loader depends only on this, never on a transport.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	// Fetch returns the raw lap and classification records for a session.
	Fetch(ctx context.Context, key timing.SessionKey) (*timing.RawSession, error)
}

// DataUnavailable reports that the remote source could not supply a session.
// The loader does not retry; retry policy belongs to the caller.
type DataUnavailable struct {
	Key   timing.SessionKey
	Cause error
}

func (e *DataUnavailable) Error() string {
	return fmt.Sprintf("session data unavailable for %s: %v", e.Key, e.Cause)
}

func (e *DataUnavailable) Unwrap() error { return e.Cause }

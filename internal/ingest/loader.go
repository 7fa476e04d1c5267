package ingest

import (
	"context"
	"errors"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/fortuna/apex/internal/sessioncache"
	"github.com/fortuna/apex/internal/timing"
)

// Loader is the cache-through session loader.
// Primary source first; the fallback (if any) is tried only when the primary
// fails for the whole session; partial results are never merged.
type Loader struct {
	cache    sessioncache.Cache
	primary  Source
	fallback Source
	group    singleflight.Group
}

// NewLoader creates a loader over the given cache and primary source.
func NewLoader(cache sessioncache.Cache, primary Source) *Loader {
	return &Loader{cache: cache, primary: primary}
}

// WithFallback adds a fallback source consulted when the primary fails.
func (l *Loader) WithFallback(fallback Source) *Loader {
	l.fallback = fallback
	return l
}

// Load returns the normalized session for the key. Cache hits never touch
// the remote source. Concurrent calls for the same uncached key are
// coalesced into a single fetch; the losers wait on the winner's result.
func (l *Loader) Load(ctx context.Context, key timing.SessionKey) (*timing.Session, error) {
	if session, ok := l.readCached(ctx, key); ok {
		return session, nil
	}

	v, err, _ := l.group.Do(key.String(), func() (interface{}, error) {
		// A coalesced waiter may arrive after the winner already populated
		// the cache for this key.
		if session, ok := l.readCached(ctx, key); ok {
			return session, nil
		}
		return l.fetchAndCache(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*timing.Session), nil
}

// readCached returns the cached session if a valid entry exists. Decode or
// version failures are treated as misses so a stale blob never poisons the
// pipeline.
func (l *Loader) readCached(ctx context.Context, key timing.SessionKey) (*timing.Session, bool) {
	blob, err := l.cache.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, sessioncache.ErrCacheMiss) {
			log.Printf("[loader] ⚠ cache read failed for %s: %v (continuing without cache)", key, err)
		}
		return nil, false
	}
	session, err := timing.Decode(blob)
	if err != nil {
		log.Printf("[loader] ⚠ discarding unreadable cache entry for %s: %v", key, err)
		return nil, false
	}
	return session, true
}

// fetchAndCache fetches raw data, normalizes it and writes the result to the
// cache. The write happens only after full success, so a failed fetch leaves
// no partial entry behind. A failed write is logged and swallowed: the
// session is still returned from memory.
func (l *Loader) fetchAndCache(ctx context.Context, key timing.SessionKey) (*timing.Session, error) {
	raw, err := l.primary.Fetch(ctx, key)
	if err != nil {
		if l.fallback == nil {
			return nil, &DataUnavailable{Key: key, Cause: err}
		}
		log.Printf("[loader] ⚠ %s failed for %s: %v (trying %s)", l.primary.Name(), key, err, l.fallback.Name())
		raw, err = l.fallback.Fetch(ctx, key)
		if err != nil {
			return nil, &DataUnavailable{Key: key, Cause: err}
		}
	}

	session, err := timing.Normalize(raw)
	if err != nil {
		return nil, err
	}

	blob, err := timing.Encode(session)
	if err != nil {
		return nil, err
	}
	if err := l.cache.Write(ctx, key, blob); err != nil {
		log.Printf("[loader] ⚠ cache write failed for %s: %v (serving uncached)", key, err)
	}
	return session, nil
}

package timing

import (
	"encoding/json"
	"fmt"
)

// FormatVersion is bumped whenever normalization semantics change. Cached
// blobs carrying an older version are treated as cache misses and
// re-normalized from source.
const FormatVersion = 1

type envelope struct {
	Version int      `json:"version"`
	Session *Session `json:"session"`
}

// Encode serializes a normalized session into the cache blob format. The
// encoding is deterministic for a given session, so a cached read is
// byte-identical to what the original fetch wrote.
func Encode(s *Session) ([]byte, error) {
	return json.Marshal(envelope{Version: FormatVersion, Session: s})
}

// Decode parses a cache blob back into a session. A version mismatch is
// reported so the caller can fall through to a fresh fetch.
func Decode(blob []byte) (*Session, error) {
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return nil, fmt.Errorf("decoding session blob: %w", err)
	}
	if env.Version != FormatVersion {
		return nil, fmt.Errorf("session blob version %d, want %d", env.Version, FormatVersion)
	}
	if env.Session == nil {
		return nil, fmt.Errorf("session blob missing payload")
	}
	return env.Session, nil
}

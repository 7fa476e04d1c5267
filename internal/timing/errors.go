package timing

import "fmt"

// MalformedSessionError reports raw input that normalization cannot
// reconcile. Sessions that fail this way are excluded from the standings
// fold rather than silently zero-filled.
type MalformedSessionError struct {
	Key    SessionKey
	Reason string
}

func (e *MalformedSessionError) Error() string {
	return fmt.Sprintf("malformed session %s: %s", e.Key, e.Reason)
}

func malformed(key SessionKey, format string, args ...interface{}) error {
	return &MalformedSessionError{Key: key, Reason: fmt.Sprintf(format, args...)}
}

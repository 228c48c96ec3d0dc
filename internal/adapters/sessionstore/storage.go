// Package sessionstore provides the server-side key/value namespace behind
// the primefit_session cookie.
package sessionstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// DefaultTTL is how long an idle session keeps its values.
const DefaultTTL = 24 * time.Hour

// Storage holds string values per session id.
// Implementations do not lock across calls; concurrent writers to the same
// session see last-write-wins.
type Storage interface {
	// Get returns the value and whether the key was present.
	Get(ctx context.Context, sessionID, key string) (string, bool, error)
	Set(ctx context.Context, sessionID, key, value string) error
	// Delete removes keys; missing keys are ignored.
	Delete(ctx context.Context, sessionID string, keys ...string) error
	Close() error
}

// NewSessionID returns a random 32-byte hex session id.
func NewSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

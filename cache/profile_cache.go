// Package cache holds the ephemeral profile store bridging a provider
// callback to the client's token poll. Entries live for a short TTL and are
// keyed by (store, request ID); a fresh login attempt simply overwrites.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAbsent is returned by Get when no entry exists for the key, either
// because it was never written or because its TTL elapsed.
var ErrAbsent = errors.New("cache: profile absent")

// ProfileCache stores serialized provider profiles between the OAuth
// callback and the client poll.
//
// Get returns the raw bytes as written: an empty value is returned as-is,
// not as ErrAbsent, so callers can tell "never stored / expired" apart from
// "stored an explicit empty profile". Any other error is a backend failure.
type ProfileCache interface {
	Put(ctx context.Context, storeID int, requestID string, profile []byte, ttl time.Duration) error
	Get(ctx context.Context, storeID int, requestID string) ([]byte, error)
	Close() error
}

// Key builds the cache key for a (store, request ID) pair.
func Key(storeID int, requestID string) string {
	return fmt.Sprintf("%d_%s", storeID, requestID)
}

// Package cache provides layout memoization for kintree.
//
// The layout engine is a pure function of (snapshot, request, spacing), so
// its output can be cached on a key derived from those inputs. This package
// defines the Cache interface plus file, Redis, and null implementations,
// and a Keyer that turns engine inputs into stable cache keys.
package cache

import (
	"context"
	"errors"
	"time"
)

// TTLs for the cacheable artifact classes.
const (
	// TTLLayout bounds how long a computed diagram stays cached. Layouts
	// are cheap to recompute, so the TTL mainly caps stale entries after
	// the underlying data changes without a snapshot-version bump.
	TTLLayout = 24 * time.Hour

	// TTLSnapshot bounds cached snapshot documents (server mode).
	TTLSnapshot = time.Hour
)

// ErrCacheMiss is returned by helpers that treat a miss as an error.
// Cache.Get reports misses through its bool return instead.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores opaque byte blobs under string keys with per-entry TTLs.
//
// Implementations must treat Get misses as (nil, false, nil) - an error
// return is reserved for backend failures.
type Cache interface {
	// Get retrieves the value for key. The bool reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any backend resources.
	Close() error
}

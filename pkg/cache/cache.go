// Package cache provides byte caches for layout results.
//
// Three backends implement [Cache]: [NullCache] (caching disabled),
// [FileCache] (CLI, one JSON file per entry under the user cache directory)
// and [RedisCache] (shared by API replicas). Keys come from a [Keyer] so
// that the CLI and the API address the same entries.
//
// Only layouts are cached. Exported documents are rebuilt on every request.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values by key. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is reported as ok == false with
	// a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// TTLLayout is how long computed layouts are kept.
const TTLLayout = 7 * 24 * time.Hour

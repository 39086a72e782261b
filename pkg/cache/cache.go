// Package cache stores rendered outputs keyed by the content they were
// produced from.
//
// A render is fully determined by its verified graph, its input image and
// its output format, so the pipeline hashes those three and reuses a
// previous output when the key matches. Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for `nprs serve`
//   - [NullCache]: caching disabled
//
// Keys are built by a [Keyer]; [ScopedKeyer] prefixes every key so several
// tenants can share one backend.
package cache

import (
	"context"
	"time"
)

// Default TTLs for cached entries.
const (
	// TTLRender is how long an encoded render output stays cached.
	TTLRender = 7 * 24 * time.Hour

	// TTLDiagram is how long a rendered graph diagram stays cached.
	TTLDiagram = 30 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the data stored under key. A miss is reported with
	// found == false and a nil error.
	Get(ctx context.Context, key string) (data []byte, found bool, err error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by the cache.
	Clear(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error
}

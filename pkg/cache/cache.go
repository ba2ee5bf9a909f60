// Package cache stores rendered images keyed by their canonical parameters.
//
// Renders are pure functions of their parameters, so a finished JPEG can be
// reused for any later request with the same inputs. The package provides:
//
//   - [MemoryCache]: in-process LRU, the server default
//   - [RedisCache]: shared across server replicas
//   - [FileCache]: on-disk cache for repeated CLI renders
//   - [NullCache]: caching disabled
//
// Keys come from [RenderKey], which hashes the render kind together with the
// decoded parameter struct so equivalent query strings share an entry.
// [Scoped] namespaces a cache, e.g. per build version.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. A ttl of zero means the
// entry does not expire.
type Cache interface {
	// Get returns the cached bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

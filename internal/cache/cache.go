// Package cache provides a key/value cache for listing responses.
//
// Caching is strictly an optimization: every operation is fail-soft, and a
// deployment without a cache backend gets a no-op implementation. Callers
// never branch on whether caching is enabled.
package cache

import (
	"context"
	"time"
)

// Cache is a minimal byte-oriented cache with per-entry TTLs.
type Cache interface {
	// Get returns the cached value for key, or ok=false when absent,
	// expired, or the backend is unreachable.
	Get(ctx context.Context, key string) (value []byte, ok bool)

	// Set stores value under key for ttl. Failures are logged, not returned.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Delete removes key from the cache.
	Delete(ctx context.Context, key string)

	// Clear drops the entire cache namespace.
	Clear(ctx context.Context)
}

// Noop is the Cache used when no backend is configured. Get always misses;
// writes go nowhere.
type Noop struct{}

// NewNoop returns a no-op Cache.
func NewNoop() Noop { return Noop{} }

func (Noop) Get(ctx context.Context, key string) ([]byte, bool) { return nil, false }

func (Noop) Set(ctx context.Context, key string, v []byte, ttl time.Duration) {}

func (Noop) Delete(ctx context.Context, key string) {}

func (Noop) Clear(ctx context.Context) {}

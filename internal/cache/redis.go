package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Cache on a Redis backend. All errors are absorbed and
// logged so that a flaky or restarting Redis degrades to a cache miss
// instead of failing requests.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the Redis instance described by redisURL
// (e.g. "redis://localhost:6379/0") and verifies it responds to PING.
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}

	return &Redis{client: client}, nil
}

// Get returns the value stored under key, or a miss on absence or error.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache: get %q: %v", key, err)
		}
		return nil, false
	}
	return b, true
}

// Set stores value under key with the given TTL.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("cache: set %q: %v", key, err)
	}
}

// Delete removes key.
func (r *Redis) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		log.Printf("cache: delete %q: %v", key, err)
	}
}

// Clear flushes the whole database asynchronously, matching the "any write
// invalidates every cached listing" policy.
func (r *Redis) Clear(ctx context.Context) {
	if err := r.client.FlushAllAsync(ctx).Err(); err != nil {
		log.Printf("cache: clear: %v", err)
	}
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

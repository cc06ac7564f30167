// Package ratelimit provides a Redis-backed fixed-window rate limiter.
//
// Counters live in Redis so limits hold across replicas. When Redis is
// unreachable the limiter fails open: availability of the authentication flow
// is preferred over strict enforcement during a cache outage.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLimited is returned when a key has exhausted its window allowance.
var ErrLimited = errors.New("pkgratelimit: too many attempts")

// Limiter limits how often an operation may run for a given key.
type Limiter interface {
	// Allow returns ErrLimited when key has no allowance left in the current
	// window, nil otherwise.
	Allow(ctx context.Context, key string) error
}

// FixedWindow counts attempts per key in fixed time windows.
type FixedWindow struct {
	client *redis.Client
	prefix string
	max    int64
	window time.Duration
}

// NewFixedWindow constructs a limiter allowing max attempts per window.
// prefix namespaces the Redis keys so independent limits never collide.
func NewFixedWindow(client *redis.Client, prefix string, max int64, window time.Duration) *FixedWindow {
	return &FixedWindow{
		client: client,
		prefix: prefix,
		max:    max,
		window: window,
	}
}

// Allow increments the counter for key and checks it against the limit.
func (f *FixedWindow) Allow(ctx context.Context, key string) error {
	redisKey := fmt.Sprintf("%s:%s", f.prefix, key)

	count, err := f.client.Incr(ctx, redisKey).Result()
	if err != nil {
		slog.WarnContext(ctx, "rate limiter unavailable, allowing request",
			"prefix", f.prefix, "error", err)
		return nil
	}

	if count == 1 {
		if err := f.client.Expire(ctx, redisKey, f.window).Err(); err != nil {
			slog.WarnContext(ctx, "rate limiter failed to set window expiry",
				"prefix", f.prefix, "error", err)
		}
	}

	if count > f.max {
		return ErrLimited
	}

	return nil
}

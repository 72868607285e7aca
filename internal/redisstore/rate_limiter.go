package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter keyed by caller.
type RateLimiter struct {
	rdb    *redis.Client
	prefix string
}

// NewRateLimiter creates a limiter whose keys live under "rate:<scope>:".
func NewRateLimiter(rdb *redis.Client, scope string) *RateLimiter {
	return &RateLimiter{rdb: rdb, prefix: "rate:" + scope + ":"}
}

// Allow records one hit for key and reports whether it is within limit for
// the current window. The window starts at the first hit; a counter left
// without a TTL gets one on its next hit.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if rl == nil || rl.rdb == nil {
		return false, fmt.Errorf("Redis client not available")
	}

	k := rl.prefix + key
	var count *redis.IntCmd
	_, err := rl.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to record hit: %w", err)
	}

	return count.Val() <= int64(limit), nil
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter is a fixed-window counter per key (INCR + EXPIRE).
// Key format: buch:login:<key>
type LoginLimiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
}

// NewLoginLimiter allows limit attempts per window. A limit of 0 disables it.
func NewLoginLimiter(client redis.Cmdable, limit int, window time.Duration) *LoginLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &LoginLimiter{client: client, limit: limit, window: window}
}

// Allow counts one attempt for key and reports whether it is within the limit.
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}

	redisKey := keyPrefix + "login:" + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, fmt.Errorf("login limiter incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return true, fmt.Errorf("login limiter expire: %w", err)
		}
	}
	return count <= int64(l.limit), nil
}

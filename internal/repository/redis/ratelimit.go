package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/aura-chat/internal/api/middleware"
	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "aura:ratelimit:"

// RateLimiter counts requests per key in fixed one-minute windows
type RateLimiter struct {
	client            *Client
	requestsPerMinute int
	burst             int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		client:            client,
		requestsPerMinute: requestsPerMinute,
		burst:             burst,
	}
}

// Allow records one request for key and reports whether it fits the window
func (r *RateLimiter) Allow(ctx context.Context, key string) (middleware.RateDecision, error) {
	now := time.Now()
	windowStart := now.Truncate(time.Minute)
	fullKey := fmt.Sprintf("%s%s:%d", rateLimitPrefix, key, windowStart.Unix())

	pipe := r.client.rdb.Pipeline()
	incrCmd := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, time.Minute)

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return middleware.RateDecision{}, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	count := incrCmd.Val()
	limit := int64(r.requestsPerMinute + r.burst)
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return middleware.RateDecision{
		Allowed:   count <= limit,
		Remaining: int(remaining),
		ResetAt:   windowStart.Add(time.Minute),
	}, nil
}

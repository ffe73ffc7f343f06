package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uniedit/fintoc-gateway/internal/port/outbound"
)

const rateLimitKeyPrefix = "fintoc:ratelimit:"

// rateLimiter implements outbound.RateLimiterPort with a sorted-set sliding window.
type rateLimiter struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter adapter.
func NewRateLimiter(client redis.UniversalClient) outbound.RateLimiterPort {
	return &rateLimiter{client: client, now: time.Now}
}

func (r *rateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	fullKey := rateLimitKeyPrefix + key
	now := r.now().UnixNano()
	windowStart := now - window.Nanoseconds()

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, fullKey, "0", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, fullKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("count window: %w", err)
	}

	count := int(countCmd.Val())
	if count >= limit {
		return false, 0, nil
	}

	pipe = r.client.TxPipeline()
	pipe.ZAdd(ctx, fullKey, redis.Z{Score: float64(now), Member: strconv.FormatInt(now, 10)})
	pipe.Expire(ctx, fullKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("record request: %w", err)
	}

	return true, limit - count - 1, nil
}

// Compile-time check
var _ outbound.RateLimiterPort = (*rateLimiter)(nil)

package outbound

import (
	"context"
	"time"
)

// RateLimiterPort defines sliding-window rate limiting.
type RateLimiterPort interface {
	// Allow records one request for key and reports whether it fits in the window,
	// along with the requests still available.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, remaining int, err error)
}

// IdempotencyStorePort stores responses of admin requests keyed by Idempotency-Key.
type IdempotencyStorePort interface {
	// Get returns the stored entry, or nil when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores an entry for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Lock acquires an in-flight lock for key. It returns false when already held.
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Unlock releases the in-flight lock for key.
	Unlock(ctx context.Context, key string) error
}

package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that have already been handled, so a side
// effect keyed on them (enqueueing a business for scoring) fires once.
type IdempotencyStore interface {
	// MarkProcessed records key with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether key is currently marked.
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release removes a mark, used when the guarded side effect failed.
	Release(ctx context.Context, key string) error

	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL after which the same key can be handled again. Default: 7 days
	TTL time.Duration
	// Enabled toggles the guard. Default: true
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     7 * 24 * time.Hour,
		Enabled: true,
	}
}

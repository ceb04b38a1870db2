package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event IDs have been handled so a
// redelivered event is not applied twice.
type IdempotencyStore interface {
	// MarkProcessed claims an event ID for the given TTL. It reports
	// true when this call made the claim, false when some earlier call
	// already had.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the event ID is currently claimed.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig controls deduplication of event deliveries.
type IdempotencyConfig struct {
	// TTL bounds how long a processed event ID is remembered. Once it
	// lapses the same ID would be handled again.
	TTL time.Duration

	// Enabled turns deduplication off entirely when false.
	Enabled bool
}

// DefaultIdempotencyConfig remembers event IDs for 24 hours.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}

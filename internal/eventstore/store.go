package eventstore

import (
	"context"
	"time"
)

// Store persists and retrieves events.
type Store interface {
	// Append adds an event and returns it with its assigned ID.
	Append(ctx context.Context, e Event) (Event, error)

	// Recent returns up to limit events, newest first, optionally filtered by type.
	Recent(ctx context.Context, eventType string, limit int) ([]Event, error)

	// GetRange retrieves events within a time range, oldest first.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close releases resources.
	Close() error
}

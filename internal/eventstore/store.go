// Package eventstore persists document lifecycle events in SQLite.
package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving events.
type Store interface {
	// Append adds a new event to the stream of one document.
	Append(ctx context.Context, streamID, eventType string, payload []byte, metadata map[string]string) error

	// GetByStream retrieves all events of one document in insertion order.
	GetByStream(ctx context.Context, streamID string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}

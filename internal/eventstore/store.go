// Package eventstore indexes received webhook deliveries in SQLite so they can
// be queried by source or time range.
package eventstore

import (
	"context"
	"time"
)

// TypeWebhookReceived is the type of events appended by the webhook sink.
const TypeWebhookReceived = "webhook.received"

// Event is one stored delivery.
type Event struct {
	ID        int64
	Source    string
	Type      string
	Timestamp time.Time
	Payload   []byte
	Metadata  map[string]string
}

// Filter narrows a Query. Zero fields do not filter.
type Filter struct {
	Source string
	Since  time.Time
	Until  time.Time
	// Limit keeps only the newest Limit matches.
	Limit int
}

// Store is an append-only event log.
type Store interface {
	// Append stores e. A zero Timestamp is replaced by the store's clock and
	// the assigned ID is ignored.
	Append(ctx context.Context, e Event) error

	// Query returns matching events oldest first.
	Query(ctx context.Context, f Filter) ([]Event, error)

	// Count returns the number of stored events.
	Count(ctx context.Context) (int, error)

	Close() error
}

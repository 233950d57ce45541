package webhooklog

import (
	"context"
	"encoding/json"

	"git.home.luguber.info/inful/kaizen/internal/eventstore"
)

// EventStoreSink indexes entries in an event store under the delivery time.
type EventStoreSink struct {
	store eventstore.Store
}

// NewEventStoreSink wraps store.
func NewEventStoreSink(store eventstore.Store) *EventStoreSink {
	return &EventStoreSink{store: store}
}

func (s *EventStoreSink) Record(ctx context.Context, e Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	meta := map[string]string{}
	if ct, ok := e.Headers["content-type"]; ok {
		meta["content_type"] = ct
	}
	return s.store.Append(ctx, eventstore.Event{
		Source:    e.SourceName,
		Type:      eventstore.TypeWebhookReceived,
		Timestamp: e.Timestamp,
		Payload:   payload,
		Metadata:  meta,
	})
}

package eventing

import (
	"context"
	"errors"

	forecasting "forecast-cloud/internal/forecasting/domain"
)

// OutboxWriter inserts outbox records.
type OutboxWriter interface {
	Insert(ctx context.Context, env Envelope) (string, error)
}

// OutboxRecord is a stored envelope awaiting relay.
type OutboxRecord struct {
	ID       string
	Envelope Envelope
}

// OutboxSink stores events in a transactional outbox table for relay by a
// separate dispatcher. It trades immediacy for a durable publish record.
type OutboxSink struct {
	outbox OutboxWriter
}

// NewOutboxSink constructs an outbox sink.
func NewOutboxSink(outbox OutboxWriter) (*OutboxSink, error) {
	if outbox == nil {
		return nil, errors.New("outbox sink: nil writer")
	}
	return &OutboxSink{outbox: outbox}, nil
}

// PublishPositionChanged writes the event envelope to the outbox.
func (s *OutboxSink) PublishPositionChanged(ctx context.Context, event forecasting.PositionChangedEvent) error {
	env, err := BuildEnvelope(event)
	if err != nil {
		return err
	}
	_, err = s.outbox.Insert(ctx, env)
	return err
}

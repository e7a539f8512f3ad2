package eventing

import (
	"context"
	"errors"
	"log"
	"time"
)

// OutboxReader lists and settles outbox records.
type OutboxReader interface {
	ListPending(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// EnvelopePublisher sends stored envelopes downstream.
type EnvelopePublisher interface {
	PublishEnvelope(ctx context.Context, env Envelope) error
}

// Relay drains pending outbox records to a downstream publisher. Records
// that fail to publish are marked failed and retried by operators, not by
// the relay itself.
type Relay struct {
	outbox    OutboxReader
	publisher EnvelopePublisher
	interval  time.Duration
	batchSize int
	logger    *log.Logger
}

// NewRelay constructs a relay.
func NewRelay(outbox OutboxReader, publisher EnvelopePublisher, interval time.Duration, batchSize int, logger *log.Logger) (*Relay, error) {
	if outbox == nil {
		return nil, errors.New("relay: nil outbox")
	}
	if publisher == nil {
		return nil, errors.New("relay: nil publisher")
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Relay{
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// Run drains the outbox on a fixed interval until the context ends.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.DrainOnce(ctx); err != nil {
				r.logger.Printf("outbox relay: drain failed: %v", err)
			}
		}
	}
}

// DrainOnce publishes one batch of pending records.
func (r *Relay) DrainOnce(ctx context.Context) error {
	records, err := r.outbox.ListPending(ctx, r.batchSize)
	if err != nil {
		return err
	}
	for _, record := range records {
		if err := r.publisher.PublishEnvelope(ctx, record.Envelope); err != nil {
			r.logger.Printf("outbox relay: publish %s failed: %v", record.ID, err)
			if err := r.outbox.MarkFailed(ctx, record.ID); err != nil {
				r.logger.Printf("outbox relay: mark failed %s: %v", record.ID, err)
			}
			continue
		}
		if err := r.outbox.MarkSent(ctx, record.ID); err != nil {
			r.logger.Printf("outbox relay: mark sent %s: %v", record.ID, err)
		}
	}
	return nil
}

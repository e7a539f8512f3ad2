package eventing

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
)

type stubOutbox struct {
	pending []OutboxRecord
	sent    []string
	failed  []string
	listErr error
}

func (s *stubOutbox) ListPending(_ context.Context, limit int) ([]OutboxRecord, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if limit > len(s.pending) {
		limit = len(s.pending)
	}
	return s.pending[:limit], nil
}

func (s *stubOutbox) MarkSent(_ context.Context, id string) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *stubOutbox) MarkFailed(_ context.Context, id string) error {
	s.failed = append(s.failed, id)
	return nil
}

type stubPublisher struct {
	published []Envelope
	failOn    map[string]bool
}

func (p *stubPublisher) PublishEnvelope(_ context.Context, env Envelope) error {
	if p.failOn[env.EventID] {
		return errors.New("downstream unavailable")
	}
	p.published = append(p.published, env)
	return nil
}

func TestRelayDrainsPendingRecords(t *testing.T) {
	outbox := &stubOutbox{pending: []OutboxRecord{
		{ID: "a", Envelope: Envelope{EventID: "ev-1", EventType: EventTypePositionChanged}},
		{ID: "b", Envelope: Envelope{EventID: "ev-2", EventType: EventTypePositionChanged}},
	}}
	publisher := &stubPublisher{}
	relay, err := NewRelay(outbox, publisher, 0, 0, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new relay: %v", err)
	}

	if err := relay.DrainOnce(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("published = %d, want 2", len(publisher.published))
	}
	if len(outbox.sent) != 2 || outbox.sent[0] != "a" || outbox.sent[1] != "b" {
		t.Fatalf("sent = %v", outbox.sent)
	}
	if len(outbox.failed) != 0 {
		t.Fatalf("failed = %v", outbox.failed)
	}
}

func TestRelayMarksFailedAndContinues(t *testing.T) {
	outbox := &stubOutbox{pending: []OutboxRecord{
		{ID: "a", Envelope: Envelope{EventID: "ev-1"}},
		{ID: "b", Envelope: Envelope{EventID: "ev-2"}},
	}}
	publisher := &stubPublisher{failOn: map[string]bool{"ev-1": true}}
	relay, err := NewRelay(outbox, publisher, 0, 0, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new relay: %v", err)
	}

	if err := relay.DrainOnce(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(outbox.failed) != 1 || outbox.failed[0] != "a" {
		t.Fatalf("failed = %v", outbox.failed)
	}
	if len(outbox.sent) != 1 || outbox.sent[0] != "b" {
		t.Fatalf("sent = %v", outbox.sent)
	}
}

func TestRelayPropagatesListError(t *testing.T) {
	outbox := &stubOutbox{listErr: errors.New("db down")}
	relay, err := NewRelay(outbox, &stubPublisher{}, 0, 0, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new relay: %v", err)
	}
	if err := relay.DrainOnce(context.Background()); err == nil {
		t.Fatal("expected list error to propagate")
	}
}

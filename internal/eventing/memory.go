package eventing

import (
	"context"
	"log"
	"sync"

	forecasting "forecast-cloud/internal/forecasting/domain"
)

// MemorySink records published events in memory. It serves broker-less runs
// and tests; an instance is always injected, never shared package state.
type MemorySink struct {
	mu     sync.RWMutex
	events []forecasting.PositionChangedEvent
	logger *log.Logger
}

// NewMemorySink constructs a memory sink.
func NewMemorySink(logger *log.Logger) *MemorySink {
	if logger == nil {
		logger = log.Default()
	}
	return &MemorySink{logger: logger}
}

// PublishPositionChanged appends the event to the in-memory log.
func (s *MemorySink) PublishPositionChanged(ctx context.Context, event forecasting.PositionChangedEvent) error {
	_ = ctx
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	s.logger.Printf("position changed: company=%s total=%s reason=%q",
		event.CompanyID, event.TotalPositionMWh.String(), event.Reason)
	return nil
}

// Events returns a snapshot of everything published so far.
func (s *MemorySink) Events() []forecasting.PositionChangedEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]forecasting.PositionChangedEvent, len(s.events))
	copy(out, s.events)
	return out
}

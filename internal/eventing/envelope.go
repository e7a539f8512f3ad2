package eventing

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	forecasting "forecast-cloud/internal/forecasting/domain"
)

// EventTypePositionChanged identifies position-changed envelopes on the wire.
const EventTypePositionChanged = "forecast.position_changed"

const schemaVersion = 1

// Envelope wraps an event payload with delivery metadata.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	SchemaVersion int             `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// BuildEnvelope constructs an envelope for a position-changed event.
func BuildEnvelope(event forecasting.PositionChangedEvent) (Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, err
	}
	occurredAt := event.EventTimestamp
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventTypePositionChanged,
		OccurredAt:    occurredAt.UTC(),
		SchemaVersion: schemaVersion,
		Payload:       payload,
	}, nil
}

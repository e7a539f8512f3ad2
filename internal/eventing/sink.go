package eventing

import (
	"context"

	forecasting "forecast-cloud/internal/forecasting/domain"
)

// Sink delivers position-changed notifications to interested parties.
// Delivery guarantees (at-most-once vs. at-least-once) belong to the sink;
// callers treat Publish as a best-effort outbound call.
type Sink interface {
	PublishPositionChanged(ctx context.Context, event forecasting.PositionChangedEvent) error
}

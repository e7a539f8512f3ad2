package forecasting

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Forecast is a production forecast for one plant at one instant.
// At most one active forecast exists per (PowerPlantID, ForecastDateTime);
// that pair is the natural key the upsert workflow resolves against.
// Version is the optimistic-concurrency token checked on update.
type Forecast struct {
	ID               uuid.UUID
	PowerPlantID     uuid.UUID
	ForecastDateTime time.Time
	ProductionMWh    decimal.Decimal
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int64
}

// NewForecast creates an active forecast with a fresh identity.
// The forecast instant and audit timestamps are normalized to UTC.
func NewForecast(powerPlantID uuid.UUID, at time.Time, productionMWh decimal.Decimal, now time.Time) *Forecast {
	now = now.UTC()
	return &Forecast{
		ID:               uuid.New(),
		PowerPlantID:     powerPlantID,
		ForecastDateTime: at.UTC(),
		ProductionMWh:    productionMWh,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
		Version:          1,
	}
}

// Reforecast overwrites the production value in place. Identity and
// CreatedAt are preserved; only the value and UpdatedAt move.
func (f *Forecast) Reforecast(productionMWh decimal.Decimal, now time.Time) {
	f.ProductionMWh = productionMWh
	f.UpdatedAt = now.UTC()
}

// CreatedThisWrite reports whether the row was created by the call that
// last wrote it (CreatedAt == UpdatedAt).
func (f *Forecast) CreatedThisWrite() bool {
	return f.CreatedAt.Equal(f.UpdatedAt)
}

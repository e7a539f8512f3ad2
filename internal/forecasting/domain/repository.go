package forecasting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlantForecastSummary is a query projection: one row per plant with at
// least one active forecast in a window, produced by a single grouped query.
type PlantForecastSummary struct {
	PowerPlantID       uuid.UUID
	PowerPlantName     string
	Country            string
	TotalProductionMWh decimal.Decimal
	ForecastCount      int
}

// CompanyRepository reads companies. Reads return (nil, nil) when absent.
type CompanyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Company, error)
}

// PowerPlantRepository reads power plants.
type PowerPlantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*PowerPlant, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]PowerPlant, error)
}

// ForecastRepository persists and queries forecasts.
//
// Window conventions: GetActiveByPlantAndTime matches the exact instant.
// ListActiveByPlant takes inclusive instants. SumActiveByCompany and
// SummarizeByCompany take half-open [from, to) windows.
type ForecastRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Forecast, error)
	GetActiveByPlantAndTime(ctx context.Context, powerPlantID uuid.UUID, at time.Time) (*Forecast, error)
	ListActiveByPlant(ctx context.Context, powerPlantID uuid.UUID, from, to time.Time) ([]Forecast, error)

	Create(ctx context.Context, forecast *Forecast) error
	// Update writes the forecast conditioned on its Version still being
	// current, bumping Version on success. A stale token yields
	// ErrConcurrencyConflict.
	Update(ctx context.Context, forecast *Forecast) error

	SumActiveByCompany(ctx context.Context, companyID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
	SummarizeByCompany(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]PlantForecastSummary, error)
}

package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrUpdateForecastRequest is the upsert input. The forecast instant
// may carry any zone; it is normalized to UTC before lookup and storage.
type CreateOrUpdateForecastRequest struct {
	PowerPlantID     uuid.UUID       `json:"powerPlantId"`
	ForecastDateTime time.Time       `json:"forecastDateTime"`
	ProductionMWh    decimal.Decimal `json:"productionMWh"`
}

// ForecastResponse is a stored forecast enriched with plant display data.
type ForecastResponse struct {
	ID               uuid.UUID       `json:"id"`
	PowerPlantID     uuid.UUID       `json:"powerPlantId"`
	PowerPlantName   string          `json:"powerPlantName"`
	Country          string          `json:"country"`
	ForecastDateTime time.Time       `json:"forecastDateTime"`
	ProductionMWh    decimal.Decimal `json:"productionMWh"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// PlantPosition is one plant's contribution to a company position. Plants
// with no activity in the window appear with zero production and count.
type PlantPosition struct {
	PowerPlantID       uuid.UUID       `json:"powerPlantId"`
	PowerPlantName     string          `json:"powerPlantName"`
	Country            string          `json:"country"`
	TotalProductionMWh decimal.Decimal `json:"totalProductionMWh"`
	ForecastCount      int             `json:"forecastCount"`
}

// CompanyPositionResponse is a company's aggregate position over a window.
// EndDate is the exclusive upper bound of the half-open window.
// TotalPositionMWh always equals the sum of the per-plant breakdown.
type CompanyPositionResponse struct {
	CompanyID           uuid.UUID       `json:"companyId"`
	CompanyName         string          `json:"companyName"`
	StartDate           time.Time       `json:"startDate"`
	EndDate             time.Time       `json:"endDate"`
	TotalPositionMWh    decimal.Decimal `json:"totalPositionMWh"`
	PowerPlantPositions []PlantPosition `json:"powerPlantPositions"`
}

package forecasting

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reasons carried by PositionChangedEvent.
const (
	ReasonForecastCreated = "Forecast Created"
	ReasonForecastUpdated = "Forecast Updated"
)

// PositionChangedEvent announces that a company's aggregate position for a
// calendar day changed. It is ephemeral: produced once per successful
// forecast write, handed to the event sink, never persisted here.
type PositionChangedEvent struct {
	CompanyID        uuid.UUID       `json:"companyId"`
	StartDate        time.Time       `json:"startDate"`
	EndDate          time.Time       `json:"endDate"`
	TotalPositionMWh decimal.Decimal `json:"totalPositionMWh"`
	EventTimestamp   time.Time       `json:"eventTimestamp"`
	Reason           string          `json:"reason"`
}

package forecasting

import (
	"time"

	"github.com/google/uuid"
)

// PowerPlant is a production site belonging to exactly one company.
type PowerPlant struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Name      string
	Country   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

package forecasting

import (
	"time"

	"github.com/google/uuid"
)

// Company owns a set of power plants. Companies are seeded externally and
// read-only in this service.
type Company struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

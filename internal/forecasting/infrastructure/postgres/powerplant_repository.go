package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	forecasting "forecast-cloud/internal/forecasting/domain"
)

// PowerPlantRepository is a Postgres implementation for power plants.
type PowerPlantRepository struct {
	db *sql.DB
}

// NewPowerPlantRepository constructs a repository.
func NewPowerPlantRepository(db *sql.DB) *PowerPlantRepository {
	return &PowerPlantRepository{db: db}
}

// GetByID loads a power plant, or nil when absent.
func (r *PowerPlantRepository) GetByID(ctx context.Context, id uuid.UUID) (*forecasting.PowerPlant, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("power plant repo: nil db")
	}

	const query = `
SELECT id, company_id, name, country, created_at, updated_at
FROM power_plants
WHERE id = $1`

	var plant forecasting.PowerPlant
	row := r.db.QueryRowContext(ctx, query, id)
	err := row.Scan(&plant.ID, &plant.CompanyID, &plant.Name, &plant.Country, &plant.CreatedAt, &plant.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(err)
	}
	return &plant, nil
}

// ListByCompany returns every plant the company owns, name-ordered.
func (r *PowerPlantRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]forecasting.PowerPlant, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("power plant repo: nil db")
	}

	const query = `
SELECT id, company_id, name, country, created_at, updated_at
FROM power_plants
WHERE company_id = $1
ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var plants []forecasting.PowerPlant
	for rows.Next() {
		var plant forecasting.PowerPlant
		if err := rows.Scan(&plant.ID, &plant.CompanyID, &plant.Name, &plant.Country, &plant.CreatedAt, &plant.UpdatedAt); err != nil {
			return nil, classify(err)
		}
		plants = append(plants, plant)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return plants, nil
}

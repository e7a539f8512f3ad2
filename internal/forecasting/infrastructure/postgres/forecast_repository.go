package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	forecasting "forecast-cloud/internal/forecasting/domain"
)

// ForecastRepository is a Postgres implementation for forecasts.
type ForecastRepository struct {
	db *sql.DB
}

// NewForecastRepository constructs a repository.
func NewForecastRepository(db *sql.DB) *ForecastRepository {
	return &ForecastRepository{db: db}
}

const forecastColumns = `id, power_plant_id, forecast_datetime, production_mwh, is_active, created_at, updated_at, version`

// GetByID loads a forecast, or nil when absent.
func (r *ForecastRepository) GetByID(ctx context.Context, id uuid.UUID) (*forecasting.Forecast, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("forecast repo: nil db")
	}

	query := `
SELECT ` + forecastColumns + `
FROM forecasts
WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	return scanForecast(row)
}

// GetActiveByPlantAndTime loads the single active forecast matching the
// natural key (plant, exact instant), or nil when absent.
func (r *ForecastRepository) GetActiveByPlantAndTime(ctx context.Context, powerPlantID uuid.UUID, at time.Time) (*forecasting.Forecast, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("forecast repo: nil db")
	}

	query := `
SELECT ` + forecastColumns + `
FROM forecasts
WHERE power_plant_id = $1 AND forecast_datetime = $2 AND is_active
LIMIT 1`

	row := r.db.QueryRowContext(ctx, query, powerPlantID, at.UTC())
	return scanForecast(row)
}

// ListActiveByPlant returns active forecasts between from and to, bounds
// inclusive, ordered by forecast time.
func (r *ForecastRepository) ListActiveByPlant(ctx context.Context, powerPlantID uuid.UUID, from, to time.Time) ([]forecasting.Forecast, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("forecast repo: nil db")
	}

	query := `
SELECT ` + forecastColumns + `
FROM forecasts
WHERE power_plant_id = $1
  AND forecast_datetime >= $2
  AND forecast_datetime <= $3
  AND is_active
ORDER BY forecast_datetime`

	rows, err := r.db.QueryContext(ctx, query, powerPlantID, from.UTC(), to.UTC())
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var forecasts []forecasting.Forecast
	for rows.Next() {
		var forecast forecasting.Forecast
		if err := rows.Scan(
			&forecast.ID,
			&forecast.PowerPlantID,
			&forecast.ForecastDateTime,
			&forecast.ProductionMWh,
			&forecast.IsActive,
			&forecast.CreatedAt,
			&forecast.UpdatedAt,
			&forecast.Version,
		); err != nil {
			return nil, classify(err)
		}
		forecasts = append(forecasts, forecast)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return forecasts, nil
}

// Create inserts a new forecast row.
func (r *ForecastRepository) Create(ctx context.Context, forecast *forecasting.Forecast) error {
	if r == nil || r.db == nil {
		return errors.New("forecast repo: nil db")
	}
	if forecast == nil {
		return errors.New("forecast repo: nil forecast")
	}

	const query = `
INSERT INTO forecasts (
	id,
	power_plant_id,
	forecast_datetime,
	production_mwh,
	is_active,
	created_at,
	updated_at,
	version
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
)`

	_, err := r.db.ExecContext(
		ctx,
		query,
		forecast.ID,
		forecast.PowerPlantID,
		forecast.ForecastDateTime.UTC(),
		forecast.ProductionMWh,
		forecast.IsActive,
		forecast.CreatedAt.UTC(),
		forecast.UpdatedAt.UTC(),
		forecast.Version,
	)
	if err != nil {
		return classify(err)
	}
	return nil
}

// Update writes the production value conditioned on the version token read
// earlier still being current. A stale token means another writer won the
// race; the caller must re-read and retry.
func (r *ForecastRepository) Update(ctx context.Context, forecast *forecasting.Forecast) error {
	if r == nil || r.db == nil {
		return errors.New("forecast repo: nil db")
	}
	if forecast == nil {
		return errors.New("forecast repo: nil forecast")
	}

	const query = `
UPDATE forecasts
SET production_mwh = $1,
	updated_at = $2,
	version = version + 1
WHERE id = $3 AND version = $4 AND is_active`

	res, err := r.db.ExecContext(
		ctx,
		query,
		forecast.ProductionMWh,
		forecast.UpdatedAt.UTC(),
		forecast.ID,
		forecast.Version,
	)
	if err != nil {
		return classify(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if affected == 0 {
		return forecasting.ErrConcurrencyConflict
	}
	forecast.Version++
	return nil
}

// SumActiveByCompany sums active production for a company over the
// half-open [from, to) window.
func (r *ForecastRepository) SumActiveByCompany(ctx context.Context, companyID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	if r == nil || r.db == nil {
		return decimal.Zero, errors.New("forecast repo: nil db")
	}

	const query = `
SELECT COALESCE(SUM(f.production_mwh), 0)
FROM forecasts f
JOIN power_plants p ON p.id = f.power_plant_id
WHERE p.company_id = $1
  AND f.is_active
  AND f.forecast_datetime >= $2
  AND f.forecast_datetime < $3`

	var total decimal.Decimal
	row := r.db.QueryRowContext(ctx, query, companyID, from.UTC(), to.UTC())
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, classify(err)
	}
	return total, nil
}

// SummarizeByCompany returns one grouped row per plant with activity in the
// half-open [from, to) window. Plants with no activity do not appear.
func (r *ForecastRepository) SummarizeByCompany(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]forecasting.PlantForecastSummary, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("forecast repo: nil db")
	}

	const query = `
SELECT f.power_plant_id, p.name, p.country, SUM(f.production_mwh), COUNT(*)
FROM forecasts f
JOIN power_plants p ON p.id = f.power_plant_id
WHERE p.company_id = $1
  AND f.is_active
  AND f.forecast_datetime >= $2
  AND f.forecast_datetime < $3
GROUP BY f.power_plant_id, p.name, p.country
ORDER BY p.name`

	rows, err := r.db.QueryContext(ctx, query, companyID, from.UTC(), to.UTC())
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var summaries []forecasting.PlantForecastSummary
	for rows.Next() {
		var summary forecasting.PlantForecastSummary
		if err := rows.Scan(
			&summary.PowerPlantID,
			&summary.PowerPlantName,
			&summary.Country,
			&summary.TotalProductionMWh,
			&summary.ForecastCount,
		); err != nil {
			return nil, classify(err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return summaries, nil
}

func scanForecast(row *sql.Row) (*forecasting.Forecast, error) {
	var forecast forecasting.Forecast
	err := row.Scan(
		&forecast.ID,
		&forecast.PowerPlantID,
		&forecast.ForecastDateTime,
		&forecast.ProductionMWh,
		&forecast.IsActive,
		&forecast.CreatedAt,
		&forecast.UpdatedAt,
		&forecast.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(err)
	}
	return &forecast, nil
}

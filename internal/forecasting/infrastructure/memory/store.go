package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	forecasting "forecast-cloud/internal/forecasting/domain"
)

// Store keeps companies, plants and forecasts in memory. It implements the
// forecasting repository contracts, including the optimistic-concurrency
// check on forecast updates, so tests and broker-less runs exercise the
// same semantics as Postgres.
type Store struct {
	mu        sync.RWMutex
	companies map[uuid.UUID]forecasting.Company
	plants    map[uuid.UUID]forecasting.PowerPlant
	forecasts map[uuid.UUID]forecasting.Forecast
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		companies: make(map[uuid.UUID]forecasting.Company),
		plants:    make(map[uuid.UUID]forecasting.PowerPlant),
		forecasts: make(map[uuid.UUID]forecasting.Forecast),
	}
}

// AddCompany seeds a company.
func (s *Store) AddCompany(company forecasting.Company) {
	s.mu.Lock()
	s.companies[company.ID] = company
	s.mu.Unlock()
}

// AddPowerPlant seeds a power plant.
func (s *Store) AddPowerPlant(plant forecasting.PowerPlant) {
	s.mu.Lock()
	s.plants[plant.ID] = plant
	s.mu.Unlock()
}

// GetByID returns a company, or nil when absent.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*forecasting.Company, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	company, ok := s.companies[id]
	if !ok {
		return nil, nil
	}
	return &company, nil
}

// Companies returns a repository view over companies.
func (s *Store) Companies() forecasting.CompanyRepository { return companyView{s} }

// PowerPlants returns a repository view over power plants.
func (s *Store) PowerPlants() forecasting.PowerPlantRepository { return plantView{s} }

// Forecasts returns a repository view over forecasts.
func (s *Store) Forecasts() forecasting.ForecastRepository { return forecastView{s} }

type companyView struct{ store *Store }

func (v companyView) GetByID(ctx context.Context, id uuid.UUID) (*forecasting.Company, error) {
	return v.store.GetByID(ctx, id)
}

type plantView struct{ store *Store }

func (v plantView) GetByID(ctx context.Context, id uuid.UUID) (*forecasting.PowerPlant, error) {
	_ = ctx
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	plant, ok := v.store.plants[id]
	if !ok {
		return nil, nil
	}
	return &plant, nil
}

func (v plantView) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]forecasting.PowerPlant, error) {
	_ = ctx
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	var plants []forecasting.PowerPlant
	for _, plant := range v.store.plants {
		if plant.CompanyID == companyID {
			plants = append(plants, plant)
		}
	}
	sort.Slice(plants, func(i, j int) bool { return plants[i].Name < plants[j].Name })
	return plants, nil
}

type forecastView struct{ store *Store }

func (v forecastView) GetByID(ctx context.Context, id uuid.UUID) (*forecasting.Forecast, error) {
	_ = ctx
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	forecast, ok := v.store.forecasts[id]
	if !ok {
		return nil, nil
	}
	return &forecast, nil
}

func (v forecastView) GetActiveByPlantAndTime(ctx context.Context, powerPlantID uuid.UUID, at time.Time) (*forecasting.Forecast, error) {
	_ = ctx
	at = at.UTC()
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	for _, forecast := range v.store.forecasts {
		if forecast.IsActive && forecast.PowerPlantID == powerPlantID && forecast.ForecastDateTime.Equal(at) {
			match := forecast
			return &match, nil
		}
	}
	return nil, nil
}

func (v forecastView) ListActiveByPlant(ctx context.Context, powerPlantID uuid.UUID, from, to time.Time) ([]forecasting.Forecast, error) {
	_ = ctx
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	var forecasts []forecasting.Forecast
	for _, forecast := range v.store.forecasts {
		if !forecast.IsActive || forecast.PowerPlantID != powerPlantID {
			continue
		}
		at := forecast.ForecastDateTime
		if at.Before(from) || at.After(to) {
			continue
		}
		forecasts = append(forecasts, forecast)
	}
	sort.Slice(forecasts, func(i, j int) bool {
		return forecasts[i].ForecastDateTime.Before(forecasts[j].ForecastDateTime)
	})
	return forecasts, nil
}

func (v forecastView) Create(ctx context.Context, forecast *forecasting.Forecast) error {
	_ = ctx
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	if _, ok := v.store.plants[forecast.PowerPlantID]; !ok {
		return forecasting.ErrForeignKeyViolation
	}
	for _, existing := range v.store.forecasts {
		if existing.IsActive &&
			existing.PowerPlantID == forecast.PowerPlantID &&
			existing.ForecastDateTime.Equal(forecast.ForecastDateTime) {
			return forecasting.ErrUniqueViolation
		}
	}
	v.store.forecasts[forecast.ID] = *forecast
	return nil
}

func (v forecastView) Update(ctx context.Context, forecast *forecasting.Forecast) error {
	_ = ctx
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	stored, ok := v.store.forecasts[forecast.ID]
	if !ok || !stored.IsActive || stored.Version != forecast.Version {
		return forecasting.ErrConcurrencyConflict
	}
	updated := *forecast
	updated.Version = stored.Version + 1
	v.store.forecasts[forecast.ID] = updated
	forecast.Version = updated.Version
	return nil
}

func (v forecastView) SumActiveByCompany(ctx context.Context, companyID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	_ = ctx
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	total := decimal.Zero
	for _, forecast := range v.store.forecasts {
		if !v.store.inCompanyWindow(forecast, companyID, from, to) {
			continue
		}
		total = total.Add(forecast.ProductionMWh)
	}
	return total, nil
}

func (v forecastView) SummarizeByCompany(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]forecasting.PlantForecastSummary, error) {
	_ = ctx
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	grouped := make(map[uuid.UUID]forecasting.PlantForecastSummary)
	for _, forecast := range v.store.forecasts {
		if !v.store.inCompanyWindow(forecast, companyID, from, to) {
			continue
		}
		plant := v.store.plants[forecast.PowerPlantID]
		summary, ok := grouped[plant.ID]
		if !ok {
			summary = forecasting.PlantForecastSummary{
				PowerPlantID:       plant.ID,
				PowerPlantName:     plant.Name,
				Country:            plant.Country,
				TotalProductionMWh: decimal.Zero,
			}
		}
		summary.TotalProductionMWh = summary.TotalProductionMWh.Add(forecast.ProductionMWh)
		summary.ForecastCount++
		grouped[plant.ID] = summary
	}
	summaries := make([]forecasting.PlantForecastSummary, 0, len(grouped))
	for _, summary := range grouped {
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].PowerPlantName < summaries[j].PowerPlantName
	})
	return summaries, nil
}

// inCompanyWindow applies the half-open [from, to) company window filter.
// Callers hold the store lock.
func (s *Store) inCompanyWindow(forecast forecasting.Forecast, companyID uuid.UUID, from, to time.Time) bool {
	if !forecast.IsActive {
		return false
	}
	plant, ok := s.plants[forecast.PowerPlantID]
	if !ok || plant.CompanyID != companyID {
		return false
	}
	at := forecast.ForecastDateTime
	return !at.Before(from) && at.Before(to)
}

package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	forecasting "forecast-cloud/internal/forecasting/domain"
	"forecast-cloud/internal/observability/metrics"
)

// PositionService computes company positions over date windows. It is
// read-only and stateless between calls.
type PositionService struct {
	companies forecasting.CompanyRepository
	plants    forecasting.PowerPlantRepository
	forecasts forecasting.ForecastRepository
}

// NewPositionService constructs a service.
func NewPositionService(
	companies forecasting.CompanyRepository,
	plants forecasting.PowerPlantRepository,
	forecasts forecasting.ForecastRepository,
) (*PositionService, error) {
	if companies == nil {
		return nil, errors.New("position service: nil company repo")
	}
	if plants == nil {
		return nil, errors.New("position service: nil plant repo")
	}
	if forecasts == nil {
		return nil, errors.New("position service: nil forecast repo")
	}
	return &PositionService{companies: companies, plants: plants, forecasts: forecasts}, nil
}

// GetCompanyPosition aggregates a company's production over the calendar
// days from startDate through endDate inclusive. Every plant the company
// owns appears in the breakdown; plants with no activity contribute zero.
// The total is derived from the breakdown, never recomputed from raw rows,
// so it always equals the sum of the listed entries.
func (s *PositionService) GetCompanyPosition(ctx context.Context, companyID uuid.UUID, startDate, endDate time.Time) (*CompanyPositionResponse, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObservePositionQuery(result, time.Since(start))
	}()

	if startDate.After(endDate) {
		result = metrics.ResultError
		return nil, forecasting.ErrInvalidDateRange
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if company == nil {
		result = metrics.ResultError
		return nil, forecasting.CompanyNotFound(companyID)
	}

	from, to := forecasting.RangeWindow(startDate, endDate)

	// One grouped query for every plant with activity, then the full
	// roster; the merge is roster-driven.
	summaries, err := s.forecasts.SummarizeByCompany(ctx, companyID, from, to)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	plants, err := s.plants.ListByCompany(ctx, companyID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	byPlant := make(map[uuid.UUID]forecasting.PlantForecastSummary, len(summaries))
	for _, summary := range summaries {
		byPlant[summary.PowerPlantID] = summary
	}

	total := decimal.Zero
	positions := make([]PlantPosition, 0, len(plants))
	for _, plant := range plants {
		if summary, ok := byPlant[plant.ID]; ok {
			total = total.Add(summary.TotalProductionMWh)
			positions = append(positions, PlantPosition{
				PowerPlantID:       summary.PowerPlantID,
				PowerPlantName:     summary.PowerPlantName,
				Country:            summary.Country,
				TotalProductionMWh: summary.TotalProductionMWh,
				ForecastCount:      summary.ForecastCount,
			})
			continue
		}
		positions = append(positions, PlantPosition{
			PowerPlantID:       plant.ID,
			PowerPlantName:     plant.Name,
			Country:            plant.Country,
			TotalProductionMWh: decimal.Zero,
		})
	}

	return &CompanyPositionResponse{
		CompanyID:           company.ID,
		CompanyName:         company.Name,
		StartDate:           from,
		EndDate:             to,
		TotalPositionMWh:    total,
		PowerPlantPositions: positions,
	}, nil
}

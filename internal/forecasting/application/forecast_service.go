package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"forecast-cloud/internal/eventing"
	forecasting "forecast-cloud/internal/forecasting/domain"
	"forecast-cloud/internal/observability/metrics"
)

// ForecastService handles the forecast upsert workflow and read paths.
type ForecastService struct {
	forecasts forecasting.ForecastRepository
	plants    forecasting.PowerPlantRepository
	sink      eventing.Sink
	clock     Clock
	logger    *log.Logger
}

// NewForecastService constructs a service.
func NewForecastService(
	forecasts forecasting.ForecastRepository,
	plants forecasting.PowerPlantRepository,
	sink eventing.Sink,
	clock Clock,
	logger *log.Logger,
) (*ForecastService, error) {
	if forecasts == nil {
		return nil, errors.New("forecast service: nil forecast repo")
	}
	if plants == nil {
		return nil, errors.New("forecast service: nil plant repo")
	}
	if sink == nil {
		return nil, errors.New("forecast service: nil event sink")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ForecastService{
		forecasts: forecasts,
		plants:    plants,
		sink:      sink,
		clock:     clock,
		logger:    logger,
	}, nil
}

// CreateOrUpdate creates a forecast for (plant, instant) or updates the
// existing active one in place. On success the owning company's same-day
// position is recomputed and announced; that side effect is best-effort and
// never fails the write.
func (s *ForecastService) CreateOrUpdate(ctx context.Context, req CreateOrUpdateForecastRequest) (*ForecastResponse, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveUpsert(result, time.Since(start))
	}()

	plant, err := s.plants.GetByID(ctx, req.PowerPlantID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if plant == nil {
		result = metrics.ResultError
		return nil, forecasting.PowerPlantNotFound(req.PowerPlantID)
	}

	if req.ProductionMWh.IsNegative() {
		result = metrics.ResultError
		return nil, forecasting.ErrNegativeProduction
	}

	at := req.ForecastDateTime.UTC()
	existing, err := s.forecasts.GetActiveByPlantAndTime(ctx, plant.ID, at)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	now := s.clock.Now()
	var forecast *forecasting.Forecast
	created := false
	if existing != nil {
		existing.Reforecast(req.ProductionMWh, now)
		if err := s.forecasts.Update(ctx, existing); err != nil {
			result = metrics.ResultError
			return nil, err
		}
		forecast = existing
	} else {
		forecast = forecasting.NewForecast(plant.ID, at, req.ProductionMWh, now)
		if err := s.forecasts.Create(ctx, forecast); err != nil {
			result = metrics.ResultError
			return nil, err
		}
		created = true
	}

	s.emitPositionChanged(ctx, plant.CompanyID, forecast.ForecastDateTime, created)

	return mapForecastResponse(forecast, plant), nil
}

// GetForecast returns a forecast enriched with plant display data.
func (s *ForecastService) GetForecast(ctx context.Context, id uuid.UUID) (*ForecastResponse, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRead("by_id", result, time.Since(start))
	}()

	forecast, err := s.forecasts.GetByID(ctx, id)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if forecast == nil {
		result = metrics.ResultError
		return nil, forecasting.ForecastNotFound(id)
	}

	plant, err := s.plants.GetByID(ctx, forecast.PowerPlantID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if plant == nil {
		result = metrics.ResultError
		return nil, forecasting.PowerPlantNotFound(forecast.PowerPlantID)
	}
	return mapForecastResponse(forecast, plant), nil
}

// ListByPlant returns a plant's active forecasts between two instants,
// bounds inclusive, ordered by forecast time.
func (s *ForecastService) ListByPlant(ctx context.Context, powerPlantID uuid.UUID, startDate, endDate time.Time) ([]ForecastResponse, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRead("by_plant_range", result, time.Since(start))
	}()

	if startDate.After(endDate) {
		result = metrics.ResultError
		return nil, forecasting.ErrInvalidDateRange
	}

	plant, err := s.plants.GetByID(ctx, powerPlantID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if plant == nil {
		result = metrics.ResultError
		return nil, forecasting.PowerPlantNotFound(powerPlantID)
	}

	forecasts, err := s.forecasts.ListActiveByPlant(ctx, powerPlantID, startDate.UTC(), endDate.UTC())
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	responses := make([]ForecastResponse, 0, len(forecasts))
	for i := range forecasts {
		responses = append(responses, *mapForecastResponse(&forecasts[i], plant))
	}
	return responses, nil
}

// emitPositionChanged recomputes the company's position for the day
// containing the forecast instant and publishes a change event. Failures
// are logged and swallowed: the forecast write has already succeeded.
func (s *ForecastService) emitPositionChanged(ctx context.Context, companyID uuid.UUID, at time.Time, created bool) {
	dayStart, dayEnd := forecasting.DayWindow(at)

	total, err := s.forecasts.SumActiveByCompany(ctx, companyID, dayStart, dayEnd)
	if err != nil {
		metrics.IncEventPublish(metrics.ResultError)
		s.logger.Printf("position recompute failed: company=%s day=%s err=%v",
			companyID, dayStart.Format("2006-01-02"), err)
		return
	}

	reason := forecasting.ReasonForecastUpdated
	if created {
		reason = forecasting.ReasonForecastCreated
	}
	event := forecasting.PositionChangedEvent{
		CompanyID:        companyID,
		StartDate:        dayStart,
		EndDate:          dayEnd,
		TotalPositionMWh: total,
		EventTimestamp:   s.clock.Now(),
		Reason:           reason,
	}
	if err := s.sink.PublishPositionChanged(ctx, event); err != nil {
		metrics.IncEventPublish(metrics.ResultError)
		s.logger.Printf("position event publish failed: company=%s day=%s err=%v",
			companyID, dayStart.Format("2006-01-02"), err)
		return
	}
	metrics.IncEventPublish(metrics.ResultSuccess)
}

func mapForecastResponse(forecast *forecasting.Forecast, plant *forecasting.PowerPlant) *ForecastResponse {
	return &ForecastResponse{
		ID:               forecast.ID,
		PowerPlantID:     forecast.PowerPlantID,
		PowerPlantName:   plant.Name,
		Country:          plant.Country,
		ForecastDateTime: forecast.ForecastDateTime,
		ProductionMWh:    forecast.ProductionMWh,
		CreatedAt:        forecast.CreatedAt,
		UpdatedAt:        forecast.UpdatedAt,
	}
}

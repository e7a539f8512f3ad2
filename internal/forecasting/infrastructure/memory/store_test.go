package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	forecasting "forecast-cloud/internal/forecasting/domain"
)

func seededStore(t *testing.T) (*Store, forecasting.PowerPlant) {
	t.Helper()
	store := NewStore()
	company := forecasting.Company{ID: uuid.New(), Name: "Volt Holdings"}
	plant := forecasting.PowerPlant{ID: uuid.New(), CompanyID: company.ID, Name: "Alpha", Country: "Spain"}
	store.AddCompany(company)
	store.AddPowerPlant(plant)
	return store, plant
}

func TestCreateRejectsUnknownPlant(t *testing.T) {
	store, _ := seededStore(t)
	now := time.Now().UTC()

	forecast := forecasting.NewForecast(uuid.New(), now, decimal.NewFromInt(1), now)
	err := store.Forecasts().Create(context.Background(), forecast)
	if !forecasting.IsCode(err, forecasting.CodeForeignKeyViolation) {
		t.Fatalf("err = %v, want %s", err, forecasting.CodeForeignKeyViolation)
	}
}

func TestCreateRejectsDuplicateActiveKey(t *testing.T) {
	store, plant := seededStore(t)
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	first := forecasting.NewForecast(plant.ID, at, decimal.NewFromInt(1), now)
	if err := store.Forecasts().Create(context.Background(), first); err != nil {
		t.Fatalf("create: %v", err)
	}
	second := forecasting.NewForecast(plant.ID, at, decimal.NewFromInt(2), now)
	err := store.Forecasts().Create(context.Background(), second)
	if !forecasting.IsCode(err, forecasting.CodeUniqueViolation) {
		t.Fatalf("err = %v, want %s", err, forecasting.CodeUniqueViolation)
	}
}

func TestUpdateRequiresCurrentVersion(t *testing.T) {
	store, plant := seededStore(t)
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	forecast := forecasting.NewForecast(plant.ID, at, decimal.NewFromInt(1), now)
	if err := store.Forecasts().Create(context.Background(), forecast); err != nil {
		t.Fatalf("create: %v", err)
	}

	forecast.Reforecast(decimal.NewFromInt(2), now.Add(time.Minute))
	if err := store.Forecasts().Update(context.Background(), forecast); err != nil {
		t.Fatalf("update: %v", err)
	}
	if forecast.Version != 2 {
		t.Fatalf("version = %d, want 2", forecast.Version)
	}

	stale := *forecast
	stale.Version = 1
	err := store.Forecasts().Update(context.Background(), &stale)
	if !forecasting.IsCode(err, forecasting.CodeConcurrencyConflict) {
		t.Fatalf("stale update err = %v, want %s", err, forecasting.CodeConcurrencyConflict)
	}

	missing := *forecast
	missing.ID = uuid.New()
	err = store.Forecasts().Update(context.Background(), &missing)
	if !forecasting.IsCode(err, forecasting.CodeConcurrencyConflict) {
		t.Fatalf("missing update err = %v, want %s", err, forecasting.CodeConcurrencyConflict)
	}
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"forecast-cloud/internal/eventing"
	"forecast-cloud/internal/forecasting/application"
	forecasting "forecast-cloud/internal/forecasting/domain"
	"forecast-cloud/internal/forecasting/infrastructure/memory"
)

type env struct {
	mux     *http.ServeMux
	store   *memory.Store
	company forecasting.Company
	plant   forecasting.PowerPlant
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := memory.NewStore()
	company := forecasting.Company{ID: uuid.New(), Name: "Volt Holdings"}
	plant := forecasting.PowerPlant{
		ID:        uuid.New(),
		CompanyID: company.ID,
		Name:      "North Ridge Wind",
		Country:   "Denmark",
	}
	store.AddCompany(company)
	store.AddPowerPlant(plant)

	logger := log.New(io.Discard, "", 0)
	forecastService, err := application.NewForecastService(
		store.Forecasts(), store.PowerPlants(), eventing.NewMemorySink(logger), application.SystemClock{}, logger)
	if err != nil {
		t.Fatalf("forecast service: %v", err)
	}
	positionService, err := application.NewPositionService(store.Companies(), store.PowerPlants(), store.Forecasts())
	if err != nil {
		t.Fatalf("position service: %v", err)
	}
	forecastHandler, err := NewForecastHandler(forecastService)
	if err != nil {
		t.Fatalf("forecast handler: %v", err)
	}
	positionHandler, err := NewPositionHandler(positionService)
	if err != nil {
		t.Fatalf("position handler: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/forecasts", forecastHandler)
	mux.Handle("/api/v1/forecasts/", forecastHandler)
	mux.Handle("/api/v1/powerplants/", forecastHandler)
	mux.Handle("/api/v1/companies/", positionHandler)

	return &env{mux: mux, store: store, company: company, plant: plant}
}

func (e *env) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func (e *env) upsertBody(production string) string {
	return `{"powerPlantId":"` + e.plant.ID.String() + `","forecastDateTime":"2025-06-01T12:00:00Z","productionMWh":` + production + `}`
}

func TestUpsertCreatesThenUpdates(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/forecasts", e.upsertBody("120.5"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first upsert status = %d, body %s", rec.Code, rec.Body)
	}
	var first application.ForecastResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !first.ProductionMWh.Equal(decimal.RequireFromString("120.5")) {
		t.Fatalf("production = %s", first.ProductionMWh)
	}

	rec = e.do(t, http.MethodPost, "/api/v1/forecasts", e.upsertBody("90"))
	if rec.Code != http.StatusOK {
		t.Fatalf("second upsert status = %d, body %s", rec.Code, rec.Body)
	}
	var second application.ForecastResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("resubmission must update the same forecast")
	}
}

func TestUpsertRejectsNegativeProduction(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/forecasts", e.upsertBody("-1"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != forecasting.CodeNegativeProduction {
		t.Fatalf("code = %q", body.Code)
	}
}

func TestUpsertUnknownPlantIs404(t *testing.T) {
	e := newEnv(t)

	body := `{"powerPlantId":"` + uuid.NewString() + `","forecastDateTime":"2025-06-01T12:00:00Z","productionMWh":10}`
	rec := e.do(t, http.MethodPost, "/api/v1/forecasts", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestUpsertRejectsBadJSON(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/forecasts", `{"powerPlantId":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetForecastRoundTrip(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/forecasts", e.upsertBody("42"))
	var created application.ForecastResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = e.do(t, http.MethodGet, "/api/v1/forecasts/"+created.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got application.ForecastResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != created.ID || !got.ProductionMWh.Equal(decimal.NewFromInt(42)) {
		t.Fatalf("got %+v", got)
	}
	if got.PowerPlantName != "North Ridge Wind" {
		t.Fatalf("plant name = %q", got.PowerPlantName)
	}
}

func TestGetForecastUnknownIs404(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/forecasts/"+uuid.NewString(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != forecasting.CodeForecastNotFound {
		t.Fatalf("code = %q", body.Code)
	}
}

func TestGetForecastBadUUID(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/forecasts/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListByPlant(t *testing.T) {
	e := newEnv(t)

	e.do(t, http.MethodPost, "/api/v1/forecasts", e.upsertBody("10"))

	target := "/api/v1/powerplants/" + e.plant.ID.String() +
		"/forecasts?from=2025-06-01T00:00:00Z&to=2025-06-02T00:00:00Z"
	rec := e.do(t, http.MethodGet, target, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var list []application.ForecastResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("entries = %d, want 1", len(list))
	}
}

func TestListByPlantMissingRangeIs400(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/powerplants/"+e.plant.ID.String()+"/forecasts", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCompanyPositionJSON(t *testing.T) {
	e := newEnv(t)

	e.do(t, http.MethodPost, "/api/v1/forecasts", e.upsertBody("75.25"))

	target := "/api/v1/companies/" + e.company.ID.String() +
		"/position?startDate=2025-06-01&endDate=2025-06-01"
	rec := e.do(t, http.MethodGet, target, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var position application.CompanyPositionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &position); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !position.TotalPositionMWh.Equal(decimal.RequireFromString("75.25")) {
		t.Fatalf("total = %s", position.TotalPositionMWh)
	}
	if len(position.PowerPlantPositions) != 1 {
		t.Fatalf("breakdown = %d entries", len(position.PowerPlantPositions))
	}
}

func TestCompanyPositionUnknownCompanyIs404(t *testing.T) {
	e := newEnv(t)

	target := "/api/v1/companies/" + uuid.NewString() + "/position?startDate=2025-06-01&endDate=2025-06-01"
	rec := e.do(t, http.MethodGet, target, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestCompanyPositionReversedRangeIs400(t *testing.T) {
	e := newEnv(t)

	target := "/api/v1/companies/" + e.company.ID.String() +
		"/position?startDate=2025-06-02&endDate=2025-06-01"
	rec := e.do(t, http.MethodGet, target, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != forecasting.CodeInvalidDateRange {
		t.Fatalf("code = %q", body.Code)
	}
}

func TestCompanyPositionExportXLSX(t *testing.T) {
	e := newEnv(t)

	e.do(t, http.MethodPost, "/api/v1/forecasts", e.upsertBody("75.25"))

	target := "/api/v1/companies/" + e.company.ID.String() +
		"/position/export.xlsx?startDate=2025-06-01&endDate=2025-06-01"
	rec := e.do(t, http.MethodGet, target, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content type = %q", ct)
	}
	// XLSX is a zip archive.
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatal("body is not a zip archive")
	}
}

func TestCompanyPositionExportPDF(t *testing.T) {
	e := newEnv(t)

	target := "/api/v1/companies/" + e.company.ID.String() +
		"/position/export.pdf?startDate=2025-06-01&endDate=2025-06-01"
	rec := e.do(t, http.MethodGet, target, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("body is not a PDF")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	e := newEnv(t)

	if rec := e.do(t, http.MethodGet, "/api/v1/forecasts", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET collection status = %d", rec.Code)
	}
	target := "/api/v1/companies/" + e.company.ID.String() + "/position?startDate=2025-06-01&endDate=2025-06-01"
	if rec := e.do(t, http.MethodPost, target, "{}"); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST position status = %d", rec.Code)
	}
}

func TestConcurrencyConflictIs409(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/forecasts", e.upsertBody("10"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed status = %d", rec.Code)
	}

	logger := log.New(io.Discard, "", 0)
	service, err := application.NewForecastService(
		staleRepo{e.store.Forecasts()}, e.store.PowerPlants(), eventing.NewMemorySink(logger), application.SystemClock{}, logger)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	handler, err := NewForecastHandler(service)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/forecasts", strings.NewReader(e.upsertBody("20")))
	out := httptest.NewRecorder()
	handler.ServeHTTP(out, req)
	if out.Code != http.StatusConflict {
		t.Fatalf("status = %d, body %s", out.Code, out.Body)
	}
	var body errorBody
	if err := json.Unmarshal(out.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != forecasting.CodeConcurrencyConflict {
		t.Fatalf("code = %q", body.Code)
	}
}

// staleRepo loses every optimistic write.
type staleRepo struct {
	forecasting.ForecastRepository
}

func (r staleRepo) Update(_ context.Context, _ *forecasting.Forecast) error {
	return forecasting.ErrConcurrencyConflict
}

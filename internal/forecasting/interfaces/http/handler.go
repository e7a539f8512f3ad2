package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"forecast-cloud/internal/forecasting/application"
	forecasting "forecast-cloud/internal/forecasting/domain"
	"forecast-cloud/internal/observability/metrics"
)

const (
	timeLayout = time.RFC3339
	dateLayout = "2006-01-02"
)

// ForecastHandler serves forecast upsert and read endpoints.
type ForecastHandler struct {
	service *application.ForecastService
}

// NewForecastHandler constructs a ForecastHandler.
func NewForecastHandler(service *application.ForecastService) (*ForecastHandler, error) {
	if service == nil {
		return nil, errors.New("forecast handler: nil service")
	}
	return &ForecastHandler{service: service}, nil
}

// ServeHTTP routes forecast requests.
func (h *ForecastHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/forecasts":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleUpsert(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/forecasts/"):
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleGet(w, r, strings.TrimPrefix(r.URL.Path, "/api/v1/forecasts/"))
	case strings.HasPrefix(r.URL.Path, "/api/v1/powerplants/"):
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/v1/powerplants/"), "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] != "forecasts" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.handleList(w, r, parts[0])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *ForecastHandler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var req application.CreateOrUpdateForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid json")
		return
	}
	if req.PowerPlantID == uuid.Nil {
		writeBadRequest(w, "powerPlantId is required")
		return
	}
	if req.ForecastDateTime.IsZero() {
		writeBadRequest(w, "forecastDateTime is required")
		return
	}

	resp, err := h.service.CreateOrUpdate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if resp.CreatedAt.Equal(resp.UpdatedAt) {
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

func (h *ForecastHandler) handleGet(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		writeBadRequest(w, "forecast id must be a uuid")
		return
	}
	resp, err := h.service.GetForecast(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ForecastHandler) handleList(w http.ResponseWriter, r *http.Request, rawID string) {
	plantID, err := uuid.Parse(rawID)
	if err != nil {
		writeBadRequest(w, "power plant id must be a uuid")
		return
	}
	from, err := parseTimeQuery(r, "from")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	to, err := parseTimeQuery(r, "to")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	resp, err := h.service.ListByPlant(r.Context(), plantID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// PositionHandler serves company position queries and file exports.
type PositionHandler struct {
	service *application.PositionService
}

// NewPositionHandler constructs a PositionHandler.
func NewPositionHandler(service *application.PositionService) (*PositionHandler, error) {
	if service == nil {
		return nil, errors.New("position handler: nil service")
	}
	return &PositionHandler{service: service}, nil
}

// ServeHTTP routes position requests.
func (h *PositionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !strings.HasPrefix(r.URL.Path, "/api/v1/companies/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/v1/companies/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] != "position" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	companyID, err := uuid.Parse(parts[0])
	if err != nil {
		writeBadRequest(w, "company id must be a uuid")
		return
	}

	startDate, err := parseDateQuery(r, "startDate")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	endDate, err := parseDateQuery(r, "endDate")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	resp, err := h.service.GetCompanyPosition(r.Context(), companyID, startDate, endDate)
	if err != nil {
		writeError(w, err)
		return
	}

	if len(parts) == 2 {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if len(parts) == 3 {
		switch parts[2] {
		case "export.xlsx":
			h.export(w, resp, "xlsx")
			return
		case "export.pdf":
			h.export(w, resp, "pdf")
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *PositionHandler) export(w http.ResponseWriter, resp *application.CompanyPositionResponse, format string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport(format, result, time.Since(start))
	}()

	var (
		payload     []byte
		err         error
		contentType string
		filename    string
	)
	switch format {
	case "xlsx":
		payload, err = BuildPositionXLSX(resp)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = "position.xlsx"
	case "pdf":
		payload, err = BuildPositionPDF(resp)
		contentType = "application/pdf"
		filename = "position.pdf"
	}
	if err != nil {
		result = metrics.ResultError
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Code:    forecasting.CodeDatabaseError,
			Message: "export rendering failed",
		})
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(payload)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Code: "Request.Invalid", Message: message})
}

// writeError maps domain error codes to HTTP statuses. Unclassified errors
// stay opaque to the caller.
func writeError(w http.ResponseWriter, err error) {
	derr, ok := forecasting.AsDomain(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Code:    forecasting.CodeDatabaseError,
			Message: "internal error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch derr.Code {
	case forecasting.CodeForecastNotFound,
		forecasting.CodePowerPlantNotFound,
		forecasting.CodeCompanyNotFound:
		status = http.StatusNotFound
	case forecasting.CodeNegativeProduction,
		forecasting.CodeInvalidDateRange:
		status = http.StatusBadRequest
	case forecasting.CodeConcurrencyConflict:
		status = http.StatusConflict
	case forecasting.CodeConnectionError,
		forecasting.CodeTimeoutError:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorBody{Code: derr.Code, Message: derr.Message})
}

func parseTimeQuery(r *http.Request, key string) (time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Time{}, errors.New(key + " is required")
	}
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, errors.New(key + " must be RFC3339")
	}
	return parsed.UTC(), nil
}

func parseDateQuery(r *http.Request, key string) (time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Time{}, errors.New(key + " is required")
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, errors.New(key + " must be YYYY-MM-DD")
	}
	return parsed.UTC(), nil
}

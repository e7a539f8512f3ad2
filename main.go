package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forecast-cloud/internal/config"
	"forecast-cloud/internal/eventing"
	eventingrepo "forecast-cloud/internal/eventing/infrastructure/postgres"
	"forecast-cloud/internal/forecasting/application"
	forecasting "forecast-cloud/internal/forecasting/domain"
	"forecast-cloud/internal/forecasting/infrastructure/memory"
	forecastrepo "forecast-cloud/internal/forecasting/infrastructure/postgres"
	forecasthttp "forecast-cloud/internal/forecasting/interfaces/http"
	"forecast-cloud/internal/observability/metrics"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	var db *sql.DB
	var companies forecasting.CompanyRepository
	var plants forecasting.PowerPlantRepository
	var forecasts forecasting.ForecastRepository

	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("open database: %v", err)
		}
		defer db.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			logger.Fatalf("ping database: %v", err)
		}
		companies = forecastrepo.NewCompanyRepository(db)
		plants = forecastrepo.NewPowerPlantRepository(db)
		forecasts = forecastrepo.NewForecastRepository(db)
		logger.Printf("storage: postgres")
	} else {
		store := memory.NewStore()
		seedDemoRoster(store)
		companies = store.Companies()
		plants = store.PowerPlants()
		forecasts = store.Forecasts()
		logger.Printf("storage: in-memory (DATABASE_URL not set)")
	}

	metrics.Init(db, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, cleanup, err := buildSink(ctx, cfg, db, logger)
	if err != nil {
		logger.Fatalf("events: %v", err)
	}
	defer cleanup()

	forecastService, err := application.NewForecastService(forecasts, plants, sink, application.SystemClock{}, logger)
	if err != nil {
		logger.Fatalf("forecast service: %v", err)
	}
	positionService, err := application.NewPositionService(companies, plants, forecasts)
	if err != nil {
		logger.Fatalf("position service: %v", err)
	}
	forecastHandler, err := forecasthttp.NewForecastHandler(forecastService)
	if err != nil {
		logger.Fatalf("forecast handler: %v", err)
	}
	positionHandler, err := forecasthttp.NewPositionHandler(positionService)
	if err != nil {
		logger.Fatalf("position handler: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/forecasts", forecastHandler)
	mux.Handle("/api/v1/forecasts/", forecastHandler)
	mux.Handle("/api/v1/powerplants/", forecastHandler)
	mux.Handle("/api/v1/companies/", positionHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(mux, logger)}
	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http shutdown: %v", err)
	}
}

// buildSink selects the position-changed event sink from configuration. In
// outbox mode with a NATS URL configured, a background relay drains stored
// envelopes to the broker.
func buildSink(ctx context.Context, cfg config.Config, db *sql.DB, logger *log.Logger) (eventing.Sink, func(), error) {
	noop := func() {}
	switch cfg.Events.Mode {
	case "nats":
		natsSink, err := eventing.NewNATSSink(eventing.NATSConfig{
			URL:           cfg.Events.NATSURL,
			Subject:       cfg.Events.Subject,
			ReconnectWait: cfg.Events.ReconnectWait,
			MaxReconnects: cfg.Events.MaxReconnects,
		}, logger)
		if err != nil {
			return nil, noop, err
		}
		return natsSink, natsSink.Close, nil
	case "outbox":
		if db == nil {
			return nil, noop, errors.New("outbox events mode requires DATABASE_URL")
		}
		store := eventingrepo.NewOutboxStore(db)
		sink, err := eventing.NewOutboxSink(store)
		if err != nil {
			return nil, noop, err
		}
		if cfg.Events.NATSURL == "" {
			return sink, noop, nil
		}
		natsSink, err := eventing.NewNATSSink(eventing.NATSConfig{
			URL:           cfg.Events.NATSURL,
			Subject:       cfg.Events.Subject,
			ReconnectWait: cfg.Events.ReconnectWait,
			MaxReconnects: cfg.Events.MaxReconnects,
		}, logger)
		if err != nil {
			return nil, noop, err
		}
		relay, err := eventing.NewRelay(store, natsSink, cfg.Events.RelayInterval, cfg.Events.RelayBatch, logger)
		if err != nil {
			natsSink.Close()
			return nil, noop, err
		}
		go relay.Run(ctx)
		return sink, natsSink.Close, nil
	default:
		return eventing.NewMemorySink(logger), noop, nil
	}
}

// seedDemoRoster mirrors the demo rows the seed tool installs in Postgres.
func seedDemoRoster(store *memory.Store) {
	seedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	companyID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	store.AddCompany(forecasting.Company{
		ID:        companyID,
		Name:      "Energy Trading Corp",
		CreatedAt: seedAt,
		UpdatedAt: seedAt,
	})
	plants := []struct {
		id      string
		name    string
		country string
	}{
		{"22222222-2222-2222-2222-222222222222", "Turkey Power Plant", "Turkey"},
		{"33333333-3333-3333-3333-333333333333", "Bulgaria Power Plant", "Bulgaria"},
		{"44444444-4444-4444-4444-444444444444", "Spain Power Plant", "Spain"},
	}
	for _, plant := range plants {
		store.AddPowerPlant(forecasting.PowerPlant{
			ID:        uuid.MustParse(plant.id),
			CompanyID: companyID,
			Name:      plant.name,
			Country:   plant.country,
			CreatedAt: seedAt,
			UpdatedAt: seedAt,
		})
	}
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	demoCompanyID       = "11111111-1111-1111-1111-111111111111"
	demoTurkeyPlantID   = "22222222-2222-2222-2222-222222222222"
	demoBulgariaPlantID = "33333333-3333-3333-3333-333333333333"
	demoSpainPlantID    = "44444444-4444-4444-4444-444444444444"
)

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS companies (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS power_plants (
	id UUID PRIMARY KEY,
	company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	country TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_power_plants_company ON power_plants (company_id)`,
	`CREATE TABLE IF NOT EXISTS forecasts (
	id UUID PRIMARY KEY,
	power_plant_id UUID NOT NULL REFERENCES power_plants(id) ON DELETE CASCADE,
	forecast_datetime TIMESTAMPTZ NOT NULL,
	production_mwh NUMERIC(18,6) NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	version BIGINT NOT NULL DEFAULT 1
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_forecasts_active_key
	ON forecasts (power_plant_id, forecast_datetime)
	WHERE is_active`,
	`CREATE INDEX IF NOT EXISTS idx_forecasts_plant_time ON forecasts (power_plant_id, forecast_datetime, is_active)`,
	`CREATE TABLE IF NOT EXISTS event_outbox (
	id UUID PRIMARY KEY,
	event_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	payload JSONB NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	attempts INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	sent_at TIMESTAMPTZ
)`,
	`CREATE INDEX IF NOT EXISTS idx_event_outbox_status ON event_outbox (status, created_at)`,
}

func main() {
	var (
		dsn           string
		demoForecasts int
		startDate     string
	)
	flag.StringVar(&dsn, "dsn", "", "postgres dsn (defaults to DATABASE_URL)")
	flag.IntVar(&demoForecasts, "demo-forecasts", 0, "hourly demo forecasts to insert per plant")
	flag.StringVar(&startDate, "start-date", "", "first demo forecast day, YYYY-MM-DD (default today UTC)")
	flag.Parse()

	if dsn == "" {
		dsn = envDSN()
	}
	if dsn == "" {
		log.Fatal("DATABASE_URL or -dsn is required")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	log.Printf("applying schema")
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("apply schema: %v", err)
		}
	}

	log.Printf("seeding demo roster")
	if err := seedRoster(ctx, db); err != nil {
		log.Fatalf("seed roster: %v", err)
	}

	if demoForecasts > 0 {
		start := time.Now().UTC().Truncate(24 * time.Hour)
		if startDate != "" {
			start, err = time.Parse("2006-01-02", startDate)
			if err != nil {
				log.Fatalf("invalid start-date: %v", err)
			}
		}
		log.Printf("seeding %d demo forecasts per plant from %s", demoForecasts, start.Format("2006-01-02"))
		if err := seedForecasts(ctx, db, start, demoForecasts); err != nil {
			log.Fatalf("seed forecasts: %v", err)
		}
	}

	log.Printf("done")
}

func seedRoster(ctx context.Context, db *sql.DB) error {
	seedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := db.ExecContext(ctx, `
INSERT INTO companies (id, name, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (id) DO NOTHING`,
		demoCompanyID, "Energy Trading Corp", seedAt)
	if err != nil {
		return err
	}

	plants := []struct {
		id      string
		name    string
		country string
	}{
		{demoTurkeyPlantID, "Turkey Power Plant", "Turkey"},
		{demoBulgariaPlantID, "Bulgaria Power Plant", "Bulgaria"},
		{demoSpainPlantID, "Spain Power Plant", "Spain"},
	}
	for _, plant := range plants {
		_, err := db.ExecContext(ctx, `
INSERT INTO power_plants (id, company_id, name, country, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (id) DO NOTHING`,
			plant.id, demoCompanyID, plant.name, plant.country, seedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func seedForecasts(ctx context.Context, db *sql.DB, start time.Time, count int) error {
	now := time.Now().UTC()
	for _, plantID := range []string{demoTurkeyPlantID, demoBulgariaPlantID, demoSpainPlantID} {
		for i := 0; i < count; i++ {
			at := start.Add(time.Duration(i) * time.Hour)
			production := 50 + rand.Float64()*100
			_, err := db.ExecContext(ctx, `
INSERT INTO forecasts (id, power_plant_id, forecast_datetime, production_mwh, is_active, created_at, updated_at, version)
VALUES ($1, $2, $3, $4, TRUE, $5, $5, 1)
ON CONFLICT DO NOTHING`,
				uuid.NewString(), plantID, at, production, now)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func envDSN() string {
	for _, key := range []string{"DATABASE_URL", "PG_DSN"} {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

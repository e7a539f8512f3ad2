package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EventsConfig defines how position-changed events leave the service.
// Mode is one of "memory", "nats" or "outbox".
type EventsConfig struct {
	Mode          string        `yaml:"mode"`
	NATSURL       string        `yaml:"nats_url"`
	Subject       string        `yaml:"subject"`
	ReconnectWait time.Duration `yaml:"reconnect_wait"`
	MaxReconnects int           `yaml:"max_reconnects"`
	RelayInterval time.Duration `yaml:"relay_interval"`
	RelayBatch    int           `yaml:"relay_batch"`
}

// Config defines service configuration. Values come from defaults, then an
// optional YAML file named by FORECAST_CONFIG, then environment overrides.
type Config struct {
	DatabaseURL     string        `yaml:"database_url"`
	HTTPAddr        string        `yaml:"http_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Events          EventsConfig  `yaml:"events"`
}

// Load resolves the effective configuration.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:        ":8080",
		ShutdownTimeout: 10 * time.Second,
		Events: EventsConfig{
			Mode:          "memory",
			Subject:       "forecast.position.changed",
			ReconnectWait: 2 * time.Second,
			MaxReconnects: 10,
			RelayInterval: 5 * time.Second,
			RelayBatch:    50,
		},
	}

	if path := os.Getenv("FORECAST_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.DatabaseURL = getenvDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.HTTPAddr = getenvDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.ShutdownTimeout = getenvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.Events.Mode = getenvDefault("EVENTS_MODE", cfg.Events.Mode)
	cfg.Events.NATSURL = getenvDefault("NATS_URL", cfg.Events.NATSURL)
	cfg.Events.Subject = getenvDefault("EVENTS_SUBJECT", cfg.Events.Subject)
	cfg.Events.ReconnectWait = getenvDuration("NATS_RECONNECT_WAIT", cfg.Events.ReconnectWait)
	cfg.Events.MaxReconnects = getenvIntDefault("NATS_MAX_RECONNECTS", cfg.Events.MaxReconnects)
	cfg.Events.RelayInterval = getenvDuration("OUTBOX_RELAY_INTERVAL", cfg.Events.RelayInterval)
	cfg.Events.RelayBatch = getenvIntDefault("OUTBOX_RELAY_BATCH", cfg.Events.RelayBatch)

	switch cfg.Events.Mode {
	case "memory", "nats", "outbox":
	default:
		return cfg, errors.New("config: events mode must be memory, nats or outbox")
	}
	if cfg.Events.Mode == "nats" && cfg.Events.NATSURL == "" {
		return cfg, errors.New("config: nats mode requires NATS_URL")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

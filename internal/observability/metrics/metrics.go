package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "forecast_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	upsertTotal   *prometheus.CounterVec
	upsertLatency *prometheus.HistogramVec

	positionTotal   *prometheus.CounterVec
	positionLatency *prometheus.HistogramVec

	readTotal   *prometheus.CounterVec
	readLatency *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	publishTotal *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		upsertTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "upsert_total",
				Help: "Total forecast upsert operations by result",
			},
			[]string{"result"},
		)
		upsertLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "upsert_latency_seconds",
				Help:    "Forecast upsert latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		positionTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "position_query_total",
				Help: "Total company position queries by result",
			},
			[]string{"result"},
		)
		positionLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "position_query_latency_seconds",
				Help:    "Company position query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		readTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "read_total",
				Help: "Total forecast read operations by query and result",
			},
			[]string{"query", "result"},
		)
		readLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "read_latency_seconds",
				Help:    "Forecast read latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"query", "result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "position_export_total",
				Help: "Total position report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "position_export_latency_seconds",
				Help:    "Position report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		publishTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "event_publish_total",
				Help: "Total position-changed event publishes by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			upsertTotal,
			upsertLatency,
			positionTotal,
			positionLatency,
			readTotal,
			readLatency,
			exportTotal,
			exportLatency,
			publishTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveUpsert records upsert latency and result.
func ObserveUpsert(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if upsertTotal != nil {
		upsertTotal.WithLabelValues(result).Inc()
	}
	if upsertLatency != nil {
		upsertLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObservePositionQuery records position query latency and result.
func ObservePositionQuery(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if positionTotal != nil {
		positionTotal.WithLabelValues(result).Inc()
	}
	if positionLatency != nil {
		positionLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveRead records read-path latency and result for a named query.
func ObserveRead(query, result string, duration time.Duration) {
	if query == "" {
		query = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if readTotal != nil {
		readTotal.WithLabelValues(query, result).Inc()
	}
	if readLatency != nil {
		readLatency.WithLabelValues(query, result).Observe(duration.Seconds())
	}
}

// ObserveExport records export latency and result for a format.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncEventPublish increments the event publish counter.
func IncEventPublish(result string) {
	if result == "" {
		result = resultSuccess
	}
	if publishTotal != nil {
		publishTotal.WithLabelValues(result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)

package eventing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	forecasting "forecast-cloud/internal/forecasting/domain"
)

// DefaultSubject is the NATS subject position-changed envelopes land on.
const DefaultSubject = "forecast.position.changed"

// NATSConfig holds NATS sink settings.
type NATSConfig struct {
	URL            string
	Subject        string
	Name           string
	ReconnectWait  time.Duration
	MaxReconnects  int
	ConnectTimeout time.Duration
}

// NATSSink publishes position-changed envelopes to a NATS subject.
type NATSSink struct {
	conn    *nats.Conn
	subject string
	logger  *log.Logger
}

// NewNATSSink connects to NATS and constructs a sink.
func NewNATSSink(cfg NATSConfig, logger *log.Logger) (*NATSSink, error) {
	if cfg.URL == "" {
		return nil, errors.New("nats sink: empty url")
	}
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if cfg.Name == "" {
		cfg.Name = "forecast-cloud"
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = 10
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.Timeout(cfg.ConnectTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("nats sink: connect %s: %w", cfg.URL, err)
	}

	sink := &NATSSink{conn: conn, subject: cfg.Subject, logger: logger}
	conn.SetDisconnectErrHandler(func(_ *nats.Conn, err error) {
		if err != nil {
			logger.Printf("nats sink: disconnected: %v", err)
		}
	})
	conn.SetReconnectHandler(func(nc *nats.Conn) {
		logger.Printf("nats sink: reconnected to %s", nc.ConnectedUrl())
	})
	return sink, nil
}

// PublishPositionChanged sends the event as a JSON envelope.
func (s *NATSSink) PublishPositionChanged(ctx context.Context, event forecasting.PositionChangedEvent) error {
	env, err := BuildEnvelope(event)
	if err != nil {
		return err
	}
	if err := s.PublishEnvelope(ctx, env); err != nil {
		return err
	}
	s.logger.Printf("published position changed: company=%s total=%s reason=%q subject=%s",
		event.CompanyID, event.TotalPositionMWh.String(), event.Reason, s.subject)
	return nil
}

// PublishEnvelope sends an already-built envelope.
func (s *NATSSink) PublishEnvelope(ctx context.Context, env Envelope) error {
	_ = ctx
	if s == nil || s.conn == nil {
		return errors.New("nats sink: not connected")
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("nats sink: publish %s: %w", s.subject, err)
	}
	return nil
}

// Close drains and closes the connection.
func (s *NATSSink) Close() {
	if s == nil || s.conn == nil {
		return
	}
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
	}
}

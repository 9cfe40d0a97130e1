package monitoring

import (
	"errors"
	"time"

	"github.com/getsentry/sentry-go"

	coremon "github.com/kilianp07/trikesim/core/monitoring"
)

// SentryConfig configures error reporting. An empty DSN disables it.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	Release          string  `json:"release"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	ServerName       string  `json:"server_name"`
	Debug            bool    `json:"debug"`
	// FlushSeconds bounds the wait for buffered events on shutdown.
	FlushSeconds int `json:"flush_seconds"`

	transport sentry.Transport
}

// SetDefaults fills zero fields.
func (c *SentryConfig) SetDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.FlushSeconds <= 0 {
		c.FlushSeconds = 2
	}
}

// FlushTimeout returns FlushSeconds as a duration.
func (c SentryConfig) FlushTimeout() time.Duration {
	return time.Duration(c.FlushSeconds) * time.Second
}

// Validate checks the sampling rate.
func (c SentryConfig) Validate() error {
	if c.TracesSampleRate < 0 || c.TracesSampleRate > 1 {
		return errors.New("sentry: traces_sample_rate must be within [0,1]")
	}
	return nil
}

// NewSentryMonitor initializes Sentry using the provided configuration and
// returns a Monitor implementation.
func NewSentryMonitor(cfg SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	cfg.SetDefaults()
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
		ServerName:       cfg.ServerName,
		Debug:            cfg.Debug,
		Transport:        cfg.transport,
	})
	if err != nil {
		return nil, err
	}
	return &sentryMonitor{}, nil
}

type sentryMonitor struct{}

func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		var vf coremon.VehicleFault
		if errors.As(err, &vf) {
			scope.SetContext("vehicle", map[string]interface{}{
				"id":    vf.VehicleID,
				"phase": vf.Phase,
				"time":  vf.Time,
			})
		}
		sentry.CaptureException(err)
	})
}

func (s *sentryMonitor) Recover() {
	if r := recover(); r != nil {
		sentry.CurrentHub().Recover(r)
		sentry.Flush(2 * time.Second)
		panic(r)
	}
}

func (s *sentryMonitor) Flush(timeout time.Duration) { sentry.Flush(timeout) }

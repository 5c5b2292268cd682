// Package telemetry reports errors and panics to Sentry. Every entry
// point is safe to call when Sentry is disabled.
package telemetry

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryConfig configures error tracking.
type SentryConfig struct {
	DSN         string
	Enabled     bool
	Environment string
	// SampleRate is the fraction of errors to capture, 0 means all.
	SampleRate float64
}

var enabled bool

// InitSentry initializes the Sentry client. The returned cleanup
// flushes buffered events and must run on shutdown.
func InitSentry(cfg SentryConfig, logger *slog.Logger) (func(), error) {
	if !cfg.Enabled || cfg.DSN == "" {
		logger.Info("error tracking disabled")
		enabled = false
		return func() {}, nil
	}

	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		SampleRate:  sampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sentry: %w", err)
	}
	enabled = true

	logger.Info("error tracking enabled",
		slog.String("environment", cfg.Environment),
		slog.Float64("sample_rate", sampleRate))

	return func() {
		sentry.Flush(2 * time.Second)
	}, nil
}

// CaptureError reports an error with optional key/value context.
func CaptureError(err error, extras map[string]any) {
	if !enabled || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range extras {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// CapturePanic reports a recovered panic value.
func CapturePanic(recovered any, extras map[string]any) {
	if !enabled || recovered == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range extras {
			scope.SetExtra(k, v)
		}
		scope.SetLevel(sentry.LevelFatal)
		sentry.CurrentHub().Recover(recovered)
	})
}

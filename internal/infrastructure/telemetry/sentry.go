package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/chiclet/backend/internal/infrastructure/config"
)

// sentryFlushTimeout bounds how long shutdown waits for queued events
const sentryFlushTimeout = 2 * time.Second

// InitSentry configures the global sentry client used by logger.Recovery.
// Without a DSN it does nothing. The returned func flushes queued events.
func InitSentry(cfg config.SentryConfig, release string, logger *zap.Logger) (func(), error) {
	if !cfg.Enabled() {
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}

	if logger != nil {
		logger.Info("Sentry error reporting enabled",
			zap.String("environment", cfg.Environment),
			zap.Float64("traces_sample_rate", cfg.TracesSampleRate),
		)
	}
	return func() { sentry.Flush(sentryFlushTimeout) }, nil
}

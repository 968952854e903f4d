package router

import (
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chiclet/backend/internal/infrastructure/config"
	"github.com/chiclet/backend/internal/infrastructure/logger"
	"github.com/chiclet/backend/internal/infrastructure/telemetry"
	"github.com/chiclet/backend/internal/interfaces/http/middleware"
)

// EngineOptions configures the global middleware stack
type EngineOptions struct {
	ServiceName      string
	HTTP             config.HTTPConfig
	TracingEnabled   bool
	ProfilingEnabled bool
	HSTSEnabled      bool
	MetricsEnabled   bool
	// Meters backs the HTTP metrics; nil or disabled records nothing
	Meters *telemetry.MeterProvider
	// Limiter is the per-client limiter; nil disables rate limiting
	Limiter *middleware.RateLimiter
	Logger  *zap.Logger
}

// OptionsFromConfig derives EngineOptions from the application config
func OptionsFromConfig(cfg *config.Config, limiter *middleware.RateLimiter, log *zap.Logger) EngineOptions {
	return EngineOptions{
		ServiceName:      cfg.Telemetry.ServiceName,
		HTTP:             cfg.HTTP,
		TracingEnabled:   cfg.Telemetry.Enabled,
		ProfilingEnabled: cfg.Profiling.Enabled,
		HSTSEnabled:      cfg.App.IsProduction() && cfg.Cookie.Secure,
		MetricsEnabled:   cfg.Telemetry.MetricsEnabled,
		Limiter:          limiter,
		Logger:           log,
	}
}

// NewEngine creates a gin engine with the global middleware applied in order:
//
//  1. RequestID
//  2. Tracing (otelgin) and span attributes
//  3. HTTP metrics
//  4. Recovery, reporting panics to sentry
//  5. Request log
//  6. Security headers and CORS
//  7. gzip
//  8. Body limit; the webhook enforces its own
//  9. Rate limit per client IP
//  10. Profiling labels
func NewEngine(opts EngineOptions) *gin.Engine {
	log := logger.OrNop(opts.Logger)

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: opts.ServiceName,
		Enabled:     opts.TracingEnabled,
	}))
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: opts.Meters,
		Enabled:       opts.MetricsEnabled,
		Logger:        log,
	}))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = opts.HSTSEnabled
	engine.Use(middleware.SecureWithConfig(security))

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = opts.HTTP.CORSAllowOrigins
	if len(opts.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = opts.HTTP.CORSAllowMethods
	}
	if len(opts.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = opts.HTTP.CORSAllowHeaders
	}
	cors.MaxAge = 12 * time.Hour
	engine.Use(middleware.CORSWithConfig(cors))

	if opts.HTTP.GzipEnabled {
		engine.Use(gzip.Gzip(gzip.DefaultCompression,
			gzip.WithExcludedPaths([]string{WebhookPath, HealthPath}),
			gzip.WithExcludedExtensions([]string{".pdf"}),
		))
	}

	if opts.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize, WebhookPath))
	}

	if opts.Limiter != nil {
		engine.Use(middleware.RateLimit(opts.Limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", opts.Limiter.Limit()),
			zap.Duration("window", opts.HTTP.RateLimitWindow),
		)
	}

	engine.Use(middleware.Profiling(opts.ProfilingEnabled))
	return engine
}

package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chiclet/backend/internal/infrastructure/config"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables in db.statement
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DBTracingConfigFromApp maps the telemetry settings to a DBTracingConfig
func DBTracingConfigFromApp(cfg config.TelemetryConfig) DBTracingConfig {
	thresh := cfg.DBSlowQueryThresh
	if thresh <= 0 {
		thresh = 200 * time.Millisecond
	}
	return DBTracingConfig{
		Enabled:         cfg.Enabled && cfg.DBTraceEnabled,
		LogFullSQL:      cfg.DBLogFullSQL,
		SlowQueryThresh: thresh,
		DBSystem:        "postgresql",
	}
}

// DBTracingPlugin installs otelgorm plus slow query marking on a gorm.DB.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// Register installs the plugin on db. It is a no-op when tracing is disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	hooks := []struct {
		op     string
		before func(string) error
		after  func(string) error
	}{
		{"create",
			func(n string) error { return cb.Create().Before("gorm:create").Register(n, p.before) },
			func(n string) error { return cb.Create().After("gorm:create").Register(n, p.after) }},
		{"query",
			func(n string) error { return cb.Query().Before("gorm:query").Register(n, p.before) },
			func(n string) error { return cb.Query().After("gorm:query").Register(n, p.after) }},
		{"update",
			func(n string) error { return cb.Update().Before("gorm:update").Register(n, p.before) },
			func(n string) error { return cb.Update().After("gorm:update").Register(n, p.after) }},
		{"delete",
			func(n string) error { return cb.Delete().Before("gorm:delete").Register(n, p.before) },
			func(n string) error { return cb.Delete().After("gorm:delete").Register(n, p.after) }},
		{"row",
			func(n string) error { return cb.Row().Before("gorm:row").Register(n, p.before) },
			func(n string) error { return cb.Row().After("gorm:row").Register(n, p.after) }},
		{"raw",
			func(n string) error { return cb.Raw().Before("gorm:raw").Register(n, p.before) },
			func(n string) error { return cb.Raw().After("gorm:raw").Register(n, p.after) }},
	}
	for _, h := range hooks {
		if err := h.before("otel_timing:before_" + h.op); err != nil {
			return err
		}
		if err := h.after("otel_slow_query:" + h.op); err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

func (p *DBTracingPlugin) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

func (p *DBTracingPlugin) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		elapsed := time.Since(start)
		if elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}

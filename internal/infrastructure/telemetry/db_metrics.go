package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chiclet/backend/internal/infrastructure/config"
)

// DBMetricsConfig holds configuration for database metrics collection.
type DBMetricsConfig struct {
	Enabled            bool
	SlowQueryThreshold time.Duration
	PoolStatsInterval  time.Duration
}

// DBMetricsConfigFromApp maps the telemetry settings. Database metrics need
// the meter provider, so they are off whenever metrics are.
func DBMetricsConfigFromApp(cfg config.TelemetryConfig) DBMetricsConfig {
	return DBMetricsConfig{
		Enabled:            cfg.MetricsEnabled && cfg.DBMetricsEnabled,
		SlowQueryThreshold: cfg.DBSlowQueryThresh,
		PoolStatsInterval:  cfg.DBPoolStatsInterval,
	}
}

// DBMetrics holds the connection pool and query instruments.
type DBMetrics struct {
	poolConnections    *Gauge
	poolConnectionsMax *Gauge

	queryTotal     *Counter
	queryErrors    *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter

	config   DBMetricsConfig
	logger   *zap.Logger
	sqlDB    *sql.DB
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopOnce sync.Once
}

// NewDBMetrics creates the database instruments on meter.
func NewDBMetrics(meter metric.Meter, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.PoolStatsInterval <= 0 {
		cfg.PoolStatsInterval = 15 * time.Second
	}

	m := &DBMetrics{config: cfg, logger: logger, stopCh: make(chan struct{})}
	var err error
	if m.poolConnections, err = NewGauge(meter, "db_pool_connections",
		"Number of connections in the pool by state", "{connection}"); err != nil {
		return nil, err
	}
	if m.poolConnectionsMax, err = NewGauge(meter, "db_pool_connections_max",
		"Maximum number of connections in the pool", "{connection}"); err != nil {
		return nil, err
	}
	if m.queryTotal, err = NewCounter(meter, "db_query_total",
		"Total number of database queries by operation type", "{query}"); err != nil {
		return nil, err
	}
	if m.queryErrors, err = NewCounter(meter, "db_query_errors_total",
		"Database queries that failed, excluding record not found", "{query}"); err != nil {
		return nil, err
	}
	if m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency distribution in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total",
		"Queries slower than the slow query threshold", "{query}"); err != nil {
		return nil, err
	}
	return m, nil
}

// SetSQLDB sets the pool whose stats are collected.
func (m *DBMetrics) SetSQLDB(sqlDB *sql.DB) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sqlDB = sqlDB
}

// StartPoolStatsCollection records pool stats every PoolStatsInterval until
// Stop is called or ctx is done.
func (m *DBMetrics) StartPoolStatsCollection(ctx context.Context) {
	m.mu.RLock()
	sqlDB := m.sqlDB
	m.mu.RUnlock()
	if sqlDB == nil {
		m.logger.Warn("Cannot start pool stats collection: sqlDB not set")
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.config.PoolStatsInterval)
		defer ticker.Stop()

		m.collectPoolStats(ctx)
		for {
			select {
			case <-ticker.C:
				m.collectPoolStats(ctx)
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	m.logger.Info("Started database connection pool stats collection",
		zap.Duration("interval", m.config.PoolStatsInterval),
	)
}

func (m *DBMetrics) collectPoolStats(ctx context.Context) {
	m.mu.RLock()
	sqlDB := m.sqlDB
	m.mu.RUnlock()
	if sqlDB == nil {
		return
	}

	stats := sqlDB.Stats()
	m.poolConnectionsMax.Record(ctx, int64(stats.MaxOpenConnections))
	m.poolConnections.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	m.poolConnections.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	m.poolConnections.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))
}

// Stop ends pool stats collection. Safe to call more than once.
func (m *DBMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
	})
}

// RecordQuery records one finished query.
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, duration time.Duration, err error) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "UNKNOWN"
	}
	op := AttrDBOperation.String(operation)

	m.queryTotal.Inc(ctx, op)
	m.queryDuration.RecordDuration(ctx, duration, op)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		m.queryErrors.Inc(ctx, op)
	}
	if duration > m.config.SlowQueryThreshold {
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

// DBMetricsPlugin is a gorm plugin feeding DBMetrics from query callbacks.
type DBMetricsPlugin struct {
	metrics *DBMetrics
	logger  *zap.Logger
}

// NewDBMetricsPlugin creates a new gorm plugin for database metrics.
func NewDBMetricsPlugin(metrics *DBMetrics, logger *zap.Logger) *DBMetricsPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBMetricsPlugin{metrics: metrics, logger: logger}
}

func (p *DBMetricsPlugin) Name() string { return "db_metrics" }

// Initialize registers the before/after callbacks on every processor.
func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) { p.record(tx, operation) }
	}
	raw := func(tx *gorm.DB) { p.record(tx, detectOperationType(tx.Statement.SQL.String())) }

	hooks := []struct {
		op     string
		before func(string) error
		after  func(string) error
	}{
		{"create",
			func(n string) error { return cb.Create().Before("gorm:create").Register(n, p.start) },
			func(n string) error { return cb.Create().After("gorm:create").Register(n, after("INSERT")) }},
		{"query",
			func(n string) error { return cb.Query().Before("gorm:query").Register(n, p.start) },
			func(n string) error { return cb.Query().After("gorm:query").Register(n, after("SELECT")) }},
		{"update",
			func(n string) error { return cb.Update().Before("gorm:update").Register(n, p.start) },
			func(n string) error { return cb.Update().After("gorm:update").Register(n, after("UPDATE")) }},
		{"delete",
			func(n string) error { return cb.Delete().Before("gorm:delete").Register(n, p.start) },
			func(n string) error { return cb.Delete().After("gorm:delete").Register(n, after("DELETE")) }},
		{"row",
			func(n string) error { return cb.Row().Before("gorm:row").Register(n, p.start) },
			func(n string) error { return cb.Row().After("gorm:row").Register(n, raw) }},
		{"raw",
			func(n string) error { return cb.Raw().Before("gorm:raw").Register(n, p.start) },
			func(n string) error { return cb.Raw().After("gorm:raw").Register(n, raw) }},
	}
	for _, h := range hooks {
		if err := h.before("db_metrics:before_" + h.op); err != nil {
			return err
		}
		if err := h.after("db_metrics:after_" + h.op); err != nil {
			return err
		}
	}
	return nil
}

type dbMetricsContextKey string

const dbMetricsStartTimeKey dbMetricsContextKey = "db_metrics_start_time"

func (p *DBMetricsPlugin) start(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	db.Statement.Context = context.WithValue(ctx, dbMetricsStartTimeKey, time.Now())
}

func (p *DBMetricsPlugin) record(db *gorm.DB, operation string) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	var elapsed time.Duration
	if start, ok := ctx.Value(dbMetricsStartTimeKey).(time.Time); ok {
		elapsed = time.Since(start)
	}
	p.metrics.RecordQuery(ctx, operation, db.Statement.Table, elapsed, db.Error)
}

func detectOperationType(query string) string {
	query = strings.ToUpper(strings.TrimSpace(query))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(query, op) {
			return op
		}
	}
	return "OTHER"
}

// RegisterDBMetrics installs the metrics plugin on db. It returns nil
// metrics when disabled or when the meter provider is off; callers own Stop.
func RegisterDBMetrics(db *gorm.DB, meters *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled || !meters.IsEnabled() {
		logger.Debug("Database metrics disabled, skipping registration")
		return nil, nil
	}

	metrics, err := NewDBMetrics(meters.Meter("db.client"), cfg, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	metrics.SetSQLDB(sqlDB)

	if err := db.Use(NewDBMetricsPlugin(metrics, logger)); err != nil {
		return nil, err
	}

	logger.Info("Database metrics registered",
		zap.Duration("slow_query_threshold", metrics.config.SlowQueryThreshold),
		zap.Duration("pool_stats_interval", metrics.config.PoolStatsInterval),
	)
	return metrics, nil
}

package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chiclet/backend/internal/infrastructure/config"
)

func TestDBMetricsConfigFromApp(t *testing.T) {
	cfg := DBMetricsConfigFromApp(config.TelemetryConfig{
		MetricsEnabled:      true,
		DBMetricsEnabled:    true,
		DBSlowQueryThresh:   time.Second,
		DBPoolStatsInterval: 5 * time.Second,
	})
	assert.True(t, cfg.Enabled)
	assert.Equal(t, time.Second, cfg.SlowQueryThreshold)
	assert.Equal(t, 5*time.Second, cfg.PoolStatsInterval)

	cfg = DBMetricsConfigFromApp(config.TelemetryConfig{MetricsEnabled: false, DBMetricsEnabled: true})
	assert.False(t, cfg.Enabled)
}

func TestRegisterDBMetrics_Disabled(t *testing.T) {
	db := setupTestDB(t)
	mp, _ := newTestMeters(t)

	m, err := RegisterDBMetrics(db, mp, DBMetricsConfig{Enabled: false}, nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	off, err := NewMeterProvider(context.Background(), MetricsConfig{}, nil)
	require.NoError(t, err)
	m, err = RegisterDBMetrics(db, off, DBMetricsConfig{Enabled: true}, nil)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestRegisterDBMetrics_RecordsQueries(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	mp, reader := newTestMeters(t)

	m, err := RegisterDBMetrics(db, mp, DBMetricsConfig{Enabled: true}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, m)
	t.Cleanup(m.Stop)

	require.NoError(t, db.WithContext(ctx).Create(&tracedSwatch{Name: "Rose"}).Error)
	var got tracedSwatch
	require.NoError(t, db.WithContext(ctx).First(&got).Error)
	err = db.WithContext(ctx).First(&tracedSwatch{}, 999).Error
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	require.NoError(t, db.WithContext(ctx).Model(&got).Update("name", "Ruby").Error)
	var n int64
	require.NoError(t, db.WithContext(ctx).Raw("SELECT count(*) FROM traced_swatches").Scan(&n).Error)

	rm := collect(t, reader)
	ops := counterBy(t, rm, "db_query_total", AttrDBOperation)
	assert.EqualValues(t, 1, ops["INSERT"])
	assert.EqualValues(t, 3, ops["SELECT"])
	assert.EqualValues(t, 1, ops["UPDATE"])
	assert.NotNil(t, findMetric(rm, "db_query_duration_seconds"))
	assert.Empty(t, counterBy(t, rm, "db_query_errors_total", AttrDBOperation), "record not found is not an error")
	assert.Empty(t, counterBy(t, rm, "db_slow_query_total", AttrDBTable))
}

func TestDBMetrics_RecordQuery(t *testing.T) {
	ctx := context.Background()
	mp, reader := newTestMeters(t)

	m, err := NewDBMetrics(mp.Meter("db.client"), DBMetricsConfig{SlowQueryThreshold: 100 * time.Millisecond}, nil)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, m.config.PoolStatsInterval)

	m.RecordQuery(ctx, "select", "orders", 250*time.Millisecond, nil)
	m.RecordQuery(ctx, "insert", "", 300*time.Millisecond, errors.New("duplicate key"))
	m.RecordQuery(ctx, "", "cart_items", time.Millisecond, nil)

	rm := collect(t, reader)
	assert.Equal(t, map[string]int64{"SELECT": 1, "INSERT": 1, "UNKNOWN": 1},
		counterBy(t, rm, "db_query_total", AttrDBOperation))
	assert.Equal(t, map[string]int64{"INSERT": 1},
		counterBy(t, rm, "db_query_errors_total", AttrDBOperation))
	assert.Equal(t, map[string]int64{"orders": 1, "unknown": 1},
		counterBy(t, rm, "db_slow_query_total", AttrDBTable))
}

func TestDBMetrics_PoolStats(t *testing.T) {
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(4)

	mp, reader := newTestMeters(t)
	m, err := NewDBMetrics(mp.Meter("db.client"), DBMetricsConfig{PoolStatsInterval: time.Hour}, nil)
	require.NoError(t, err)

	t.Run("needs a pool", func(t *testing.T) {
		m.StartPoolStatsCollection(context.Background())
		assert.Nil(t, findMetric(collect(t, reader), "db_pool_connections_max"))
	})

	m.SetSQLDB(sqlDB)
	m.StartPoolStatsCollection(context.Background())
	m.Stop()
	m.Stop()

	rm := collect(t, reader)
	maxConns := gaugePoints(findMetric(rm, "db_pool_connections_max"))
	require.Len(t, maxConns, 1)
	assert.EqualValues(t, 4, maxConns[0].Value)

	states := map[string]bool{}
	for _, dp := range gaugePoints(findMetric(rm, "db_pool_connections")) {
		v, _ := dp.Attributes.Value(AttrDBState)
		states[v.AsString()] = true
	}
	assert.Equal(t, map[string]bool{"idle": true, "in_use": true, "open": true}, states)
}

func gaugePoints(m *metricdata.Metrics) []metricdata.DataPoint[int64] {
	if m == nil {
		return nil
	}
	return m.Data.(metricdata.Gauge[int64]).DataPoints
}

func TestDetectOperationType(t *testing.T) {
	cases := map[string]string{
		"  select * from orders":               "SELECT",
		"INSERT INTO cart_items VALUES (1)":    "INSERT",
		"update products set stock = 0":        "UPDATE",
		"DELETE FROM addresses":                "DELETE",
		"WITH t AS (SELECT 1) SELECT * FROM t": "OTHER",
	}
	for query, want := range cases {
		assert.Equal(t, want, detectOperationType(query), query)
	}
}

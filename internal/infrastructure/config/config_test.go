package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "chiclet-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "chiclet", cfg.Database.DBName)
		assert.Equal(t, "INR", cfg.Payment.Currency)
		assert.Equal(t, int64(64<<10), cfg.Payment.MaxWebhookBytes)
		assert.Equal(t, "chiclet_session", cfg.Cookie.AccessName)
		assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiration)
	})

	t.Run("loads values from environment variables with CHICLET prefix", func(t *testing.T) {
		t.Setenv("CHICLET_APP_NAME", "test-app")
		t.Setenv("CHICLET_APP_PORT", "9000")
		t.Setenv("CHICLET_DATABASE_HOST", "testdb.local")
		t.Setenv("CHICLET_DATABASE_PORT", "5433")
		t.Setenv("CHICLET_PAYMENT_KEY_ID", "rzp_test_123")
		t.Setenv("CHICLET_PAYMENT_WEBHOOK_SECRET", "whsec")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "rzp_test_123", cfg.Payment.KeyID)
		assert.Equal(t, "whsec", cfg.Payment.WebhookSecret)
		assert.Equal(t, "test-app", cfg.Telemetry.ServiceName)
	})

	t.Run("metrics and logs export are opt in", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Telemetry.MetricsEnabled)
		assert.False(t, cfg.Telemetry.LogsEnabled)
		assert.Equal(t, 60*time.Second, cfg.Telemetry.MetricsExportInterval)
		assert.Equal(t, 15*time.Second, cfg.Telemetry.DBPoolStatsInterval)

		t.Setenv("CHICLET_TELEMETRY_METRICS_ENABLED", "true")
		t.Setenv("CHICLET_TELEMETRY_DB_METRICS_ENABLED", "true")
		t.Setenv("CHICLET_TELEMETRY_METRICS_EXPORT_INTERVAL", "10s")
		t.Setenv("CHICLET_TELEMETRY_LOGS_ENABLED", "true")
		cfg, err = Load()
		require.NoError(t, err)
		assert.True(t, cfg.Telemetry.MetricsEnabled)
		assert.True(t, cfg.Telemetry.DBMetricsEnabled)
		assert.True(t, cfg.Telemetry.LogsEnabled)
		assert.Equal(t, 10*time.Second, cfg.Telemetry.MetricsExportInterval)
	})

	t.Run("rejects idle conns above open conns", func(t *testing.T) {
		t.Setenv("CHICLET_DATABASE_MAX_OPEN_CONNS", "5")
		t.Setenv("CHICLET_DATABASE_MAX_IDLE_CONNS", "10")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
	})
}

func TestValidate_Production(t *testing.T) {
	base := func() *viper.Viper {
		v := viper.New()
		v.Set("app.env", "production")
		v.Set("jwt.secret", "0123456789abcdef0123456789abcdef")
		v.Set("database.password", "pw")
		v.Set("cookie.secure", true)
		v.Set("payment.webhook_secret", "whsec")
		return v
	}

	t.Run("accepts a complete production config", func(t *testing.T) {
		cfg, err := fromViper(base())
		require.NoError(t, err)
		assert.True(t, cfg.App.IsProduction())
	})

	tests := []struct {
		name    string
		mutate  func(v *viper.Viper)
		wantErr string
	}{
		{"short jwt secret", func(v *viper.Viper) { v.Set("jwt.secret", "short") }, "jwt.secret"},
		{"missing db password", func(v *viper.Viper) { v.Set("database.password", "") }, "database.password"},
		{"insecure cookies", func(v *viper.Viper) { v.Set("cookie.secure", false) }, "cookie.secure"},
		{"missing webhook secret", func(v *viper.Viper) { v.Set("payment.webhook_secret", "") }, "webhook_secret"},
		{"wildcard cors", func(v *viper.Viper) { v.Set("http.cors_allow_origins", []string{"*"}) }, "cors_allow_origins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := base()
			tt.mutate(v)
			_, err := fromViper(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_SameSite(t *testing.T) {
	v := viper.New()
	v.Set("cookie.same_site", "sometimes")
	_, err := fromViper(v)
	require.Error(t, err)

	v = viper.New()
	v.Set("cookie.same_site", "none")
	_, err = fromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires cookie.secure")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss:word", DBName: "chiclet", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%3Aword@db:5432/chiclet?sslmode=disable", d.DSN())
}

func TestAppConfig_TimeZone(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", cfg.App.TimeZone)
	assert.Equal(t, "Asia/Kolkata", cfg.App.Location().String())

	v := viper.New()
	v.Set("app.timezone", "Mars/Olympus_Mons")
	_, err = fromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.timezone")

	assert.Equal(t, time.UTC, AppConfig{TimeZone: "nowhere"}.Location())
}

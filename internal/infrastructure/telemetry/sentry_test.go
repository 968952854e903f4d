package telemetry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiclet/backend/internal/infrastructure/config"
	"github.com/chiclet/backend/internal/infrastructure/telemetry"
)

func TestInitSentry_WithoutDSN(t *testing.T) {
	flush, err := telemetry.InitSentry(config.SentryConfig{}, "test", nil)
	require.NoError(t, err)
	assert.NotPanics(t, flush)
}

func TestInitSentry_InvalidDSN(t *testing.T) {
	_, err := telemetry.InitSentry(config.SentryConfig{DSN: "not a dsn"}, "test", nil)
	assert.Error(t, err)
}

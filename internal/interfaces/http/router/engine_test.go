package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/chiclet/backend/internal/infrastructure/config"
	"github.com/chiclet/backend/internal/infrastructure/telemetry"
	"github.com/chiclet/backend/internal/interfaces/http/middleware"
)

func echoLength(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusRequestEntityTooLarge)
		return
	}
	c.String(http.StatusOK, "%d", len(body))
}

func TestNewEngine_Headers(t *testing.T) {
	engine := NewEngine(EngineOptions{
		HTTP: config.HTTPConfig{CORSAllowOrigins: []string{"https://shop.example.com"}},
	})
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestNewEngine_BodyLimitSkipsWebhook(t *testing.T) {
	engine := NewEngine(EngineOptions{HTTP: config.HTTPConfig{MaxBodySize: 16}})
	engine.POST("/api/v1/cart/items", echoLength)
	engine.POST(WebhookPath, echoLength)

	body := strings.Repeat("x", 64)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader(body))
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "64", w.Body.String())
}

func TestNewEngine_RateLimit(t *testing.T) {
	engine := NewEngine(EngineOptions{
		HTTP:    config.HTTPConfig{RateLimitWindow: time.Minute},
		Limiter: middleware.NewRateLimiter(2, time.Minute),
	})
	engine.GET("/api/v1/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestNewEngine_RecoversPanics(t *testing.T) {
	engine := NewEngine(EngineOptions{})
	engine.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestNewEngine_Metrics(t *testing.T) {
	newEngine := func(t *testing.T, enabled bool) (*gin.Engine, *sdkmetric.ManualReader) {
		reader := sdkmetric.NewManualReader()
		meters, err := telemetry.NewMeterProviderWithReader(telemetry.MetricsConfig{ServiceName: "chiclet-test"}, reader, nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = meters.Shutdown(context.Background()) })

		engine := NewEngine(EngineOptions{MetricsEnabled: enabled, Meters: meters})
		engine.GET("/api/v1/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
		engine.GET("/boom", func(*gin.Context) { panic("boom") })
		for _, path := range []string{"/api/v1/products/p-1", "/boom"} {
			engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		}
		return engine, reader
	}
	statuses := func(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))
		out := map[string]int64{}
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if m.Name != "http_server_request_total" {
					continue
				}
				for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
					route, _ := dp.Attributes.Value(telemetry.AttrHTTPRoute)
					code, _ := dp.Attributes.Value(telemetry.AttrHTTPStatusCode)
					out[route.AsString()+" "+code.Emit()] += dp.Value
				}
			}
		}
		return out
	}

	t.Run("records recovered panics as 500", func(t *testing.T) {
		_, reader := newEngine(t, true)
		assert.Equal(t, map[string]int64{
			"/api/v1/products/:id 200": 1,
			"/boom 500":                1,
		}, statuses(t, reader))
	})

	t.Run("flag off records nothing", func(t *testing.T) {
		_, reader := newEngine(t, false)
		assert.Empty(t, statuses(t, reader))
	})
}

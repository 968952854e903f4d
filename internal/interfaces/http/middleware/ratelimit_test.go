package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestLimiter(limit int, window time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limit, window)
	rl.now = clock.now
	return rl, clock
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows a burst up to the limit", func(t *testing.T) {
		limiter, _ := newTestLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			ok, _ := limiter.Allow("client1")
			assert.True(t, ok, "request %d should be allowed", i+1)
		}
		ok, remaining := limiter.Allow("client1")
		assert.False(t, ok)
		assert.Zero(t, remaining)
	})

	t.Run("separate buckets per client", func(t *testing.T) {
		limiter, _ := newTestLimiter(1, time.Minute)

		ok, _ := limiter.Allow("clientA")
		assert.True(t, ok)
		ok, _ = limiter.Allow("clientA")
		assert.False(t, ok)
		ok, _ = limiter.Allow("clientB")
		assert.True(t, ok)
	})

	t.Run("refills over the window", func(t *testing.T) {
		limiter, clock := newTestLimiter(2, time.Minute)

		limiter.Allow("client3")
		limiter.Allow("client3")
		ok, _ := limiter.Allow("client3")
		assert.False(t, ok)

		clock.t = clock.t.Add(30 * time.Second)
		ok, _ = limiter.Allow("client3")
		assert.True(t, ok)
	})

	t.Run("evicts idle clients", func(t *testing.T) {
		limiter, clock := newTestLimiter(2, time.Minute)
		limiter.Allow("idle")

		clock.t = clock.t.Add(3 * time.Minute)
		limiter.evict()

		limiter.mu.Lock()
		defer limiter.mu.Unlock()
		assert.Empty(t, limiter.clients)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter, _ := newTestLimiter(2, time.Minute)
	router := gin.New()
	router.Use(RateLimit(limiter))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		last = httptest.NewRecorder()
		router.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
	assert.Contains(t, last.Body.String(), "ERR_RATE_LIMITED")
}

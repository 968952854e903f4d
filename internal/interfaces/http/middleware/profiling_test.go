package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestControllerFromRoute(t *testing.T) {
	tests := map[string]string{
		"/api/v1/products":            "products",
		"/api/v1/products/:id":        "products",
		"/api/v1/admin/orders/:id":    "admin",
		"/api/razorpaywebhook":        "razorpaywebhook",
		"/api/v2/cart/items/:item_id": "cart",
		"/":                           "",
	}
	for route, want := range tests {
		assert.Equal(t, want, controllerFromRoute(route), route)
	}
}

func TestProfiling_PassesThrough(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		router := gin.New()
		router.Use(Profiling(enabled))
		router.GET("/api/v1/products", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profiling labels CPU samples taken while serving a request with the
// matched route and method so profiles can be split per endpoint.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || route == "/health" {
			c.Next()
			return
		}
		labels := pyroscope.Labels(
			"route", route,
			"method", c.Request.Method,
			"controller", controllerFromRoute(route),
		)
		pyroscope.TagWrapper(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// controllerFromRoute returns the first resource segment after the api
// prefix: "/api/v1/admin/orders/:id" -> "admin", "/api/v1/products" -> "products".
func controllerFromRoute(route string) string {
	for _, seg := range strings.Split(strings.Trim(route, "/"), "/") {
		if seg == "" || seg == "api" || strings.HasPrefix(seg, ":") || isVersionSegment(seg) {
			continue
		}
		return seg
	}
	return ""
}

func isVersionSegment(seg string) bool {
	if len(seg) < 2 || seg[0] != 'v' {
		return false
	}
	for _, r := range seg[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

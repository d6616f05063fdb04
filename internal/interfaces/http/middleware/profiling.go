package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/hawaiibiz/intel/internal/infrastructure/telemetry"
)

// Profiling attaches route and method pprof labels to the handler chain so
// Pyroscope profiles can be split per endpoint. Unmatched routes and the
// health check are left unlabelled.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || route == "/health" {
			c.Next()
			return
		}
		telemetry.WithProfilingLabels(c.Request.Context(), telemetry.HTTPRequestLabels(route, c.Request.Method), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

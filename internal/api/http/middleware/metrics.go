package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/folio-studio/folio-web/internal/metrics"
)

// MetricsMiddleware records request counts and latency by route template.
// Requests that matched no route share one label.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

package middleware

import (
	"bitwise74/usercontent-api/internal/metrics"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records HTTP request metrics
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// Unknown paths share one label so scanners can't blow up cardinality
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		metrics.RecordRequest(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start).Seconds(),
		)
	}
}

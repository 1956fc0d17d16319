package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shubhamprakash681/truefeed/internal/metrics"
)

// HTTPMetrics records one request sample per handled route.
func HTTPMetrics(rec metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		rec.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

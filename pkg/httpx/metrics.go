package httpx

import (
	"strconv"
	"time"

	"github.com/Gunvolt24/order_service/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// HTTPMetrics - счётчик и латентность запросов по шаблону маршрута (не по сырому URL).
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

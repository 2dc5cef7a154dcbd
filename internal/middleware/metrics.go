package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/metrics"
)

// Metrics 请求计数与耗时，按路由模板聚合
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

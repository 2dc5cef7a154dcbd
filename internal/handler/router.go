package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/metrics"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/middleware"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/logger"
)

// ServiceName 链路追踪中的服务名
const ServiceName = "lx-source-resolver"

// RouterConfig 路由配置
type RouterConfig struct {
	RateLimit float64 // 每个客户端IP每秒请求数，0 不限流
	RateBurst int
	Metrics   *metrics.Metrics // nil 时不暴露 /metrics
}

// NewRouter 注册路由与中间件
func NewRouter(h *Handler, log logger.Logger, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Tracing(ServiceName))
	router.Use(middleware.Logging(log))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.CORS())
	router.Use(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst).Limit())

	router.GET("/health", h.Health)
	router.GET("/cache/stats", h.CacheStats)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := router.Group("/api")
	{
		api.POST("/request", h.HandleRequest)
		api.GET("/inited", h.Inited)
	}

	return router
}

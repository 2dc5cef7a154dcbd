package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/cache"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/plugin"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/status"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/logger"
)

// Version 服务版本
const Version = "1.0.0"

// Handler 宿主适配处理器
type Handler struct {
	plugin  *plugin.Plugin
	store   cache.Store
	tracker *status.Tracker
	logger  logger.Logger
}

// New 创建处理器
func New(p *plugin.Plugin, store cache.Store, tracker *status.Tracker, log logger.Logger) *Handler {
	if tracker == nil {
		tracker = status.NewTracker()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{plugin: p, store: store, tracker: tracker, logger: log}
}

// HandleRequest POST /api/request
func (h *Handler) HandleRequest(c *gin.Context) {
	req, err := plugin.DecodeRequest(c.Request.Body)
	if err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	data, err := h.plugin.Handle(c.Request.Context(), req)
	if err != nil {
		h.logger.WithContext(c.Request.Context()).Warn("Plugin request failed",
			logger.String("action", req.Action),
			logger.String("source", req.Source),
			logger.Error(err),
		)
		FromError(c, err)
		return
	}

	Success(c, data)
}

// Inited GET /api/inited
func (h *Handler) Inited(c *gin.Context) {
	ann, err := h.plugin.Inited()
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, ann)
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    status.Status `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	Service   string        `json:"service"`
	Version   string        `json:"version"`
	Timestamp int64         `json:"timestamp"`
	Cache     cache.Stats   `json:"cache"`
}

// Health GET /health
func (h *Handler) Health(c *gin.Context) {
	snap := h.tracker.Snapshot()
	resp := HealthResponse{
		Status:    snap.Status,
		Reason:    snap.Reason,
		Service:   "lx-source-resolver",
		Version:   Version,
		Timestamp: time.Now().Unix(),
		Cache:     h.store.Stats(c.Request.Context()),
	}

	code := http.StatusOK
	if !h.tracker.Serving() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

// CacheStats GET /cache/stats
func (h *Handler) CacheStats(c *gin.Context) {
	Success(c, h.store.Stats(c.Request.Context()))
}

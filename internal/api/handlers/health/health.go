package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-manager/internal/core/cache"
	"recipe-manager/internal/core/llm"
	"recipe-manager/internal/pkg/common"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Version    string                 `json:"version"`
	LLMEnabled bool                   `json:"llm_enabled"`
	Runtime    map[string]interface{} `json:"runtime"`
	Cache      *cache.Stats           `json:"cache,omitempty"`
	Queue      *llm.QueueStatus       `json:"queue,omitempty"`
}

// statsProvider 能回報統計的快取（記憶體快取）
type statsProvider interface {
	Stats() cache.Stats
}

// Handler 健康檢查處理器
type Handler struct {
	version string
	store   cache.Store
	queue   *llm.Queue
}

// NewHandler 創建健康檢查處理器，store 與 queue 可為 nil
func NewHandler(version string, store cache.Store, queue *llm.Queue) *Handler {
	return &Handler{version: version, store: store, queue: queue}
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now(),
		Version:    h.version,
		LLMEnabled: h.queue != nil,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if sp, ok := h.store.(statsProvider); ok {
		stats := sp.Stats()
		response.Cache = &stats
	}
	if h.queue != nil {
		status := h.queue.Status()
		response.Queue = &status
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查，快取後端無法連線時回傳 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.store.Ping(ctx); err != nil {
			common.LogWarn("Cache not ready", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, common.ErrorResponse{
				Code:    common.ErrCodeServiceUnavailable,
				Message: "cache backend unavailable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

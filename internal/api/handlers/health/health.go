package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"food-analyzer/internal/core/ai/queue"
	"food-analyzer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger 可檢查連線的依賴（資料庫）
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueReporter 回報模型請求隊列狀態
type QueueReporter interface {
	QueueStatus() *queue.Status
	Model() string
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Model     string                 `json:"model"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	version string
	db      Pinger
	ai      QueueReporter
}

// NewHandler 創建健康檢查處理器
func NewHandler(version string, db Pinger, ai QueueReporter) *Handler {
	return &Handler{version: version, db: db, ai: ai}
}

// HealthCheck 健康檢查：執行時資訊與隊列狀態
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Model:     h.ai.Model(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Queue: h.ai.QueueStatus(),
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：資料庫可連線且隊列未滿
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		common.LogWarn("Readiness check failed: database", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not_ready",
			"database": err.Error(),
		})
		return
	}

	status := h.ai.QueueStatus()
	if status.MaxQueueSize > 0 && status.QueueLength >= status.MaxQueueSize {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"queue":  status,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "ok",
		"queue":    status,
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

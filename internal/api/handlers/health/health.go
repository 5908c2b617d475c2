package health

import (
	"net/http"
	"runtime"
	"time"

	"flavorgraph/internal/core/queue"
	"flavorgraph/internal/core/recipe"
	"flavorgraph/internal/infrastructure/config"
	"flavorgraph/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Version    string                 `json:"version"`
	Data       DataStatus             `json:"data"`
	Algorithms map[string]bool        `json:"algorithms"`
	Runtime    map[string]interface{} `json:"runtime"`
	Queue      *queue.Status          `json:"queue,omitempty"`
}

// DataStatus 已載入的資料量
type DataStatus struct {
	Recipes         int    `json:"recipes"`
	Ingredients     int    `json:"ingredients"`
	Compatibilities int    `json:"compatibilities"`
	Generation      uint64 `json:"index_generation"`
}

// Handler 健康檢查處理器
type Handler struct {
	cfg     *config.Config
	service *recipe.Service
	queue   *queue.Manager
}

// NewHandler 創建健康檢查處理器
func NewHandler(cfg *config.Config, service *recipe.Service, queueManager *queue.Manager) *Handler {
	return &Handler{cfg: cfg, service: service, queue: queueManager}
}

func (h *Handler) dataStatus() DataStatus {
	stats := h.service.SystemStats()
	ds := DataStatus{Generation: h.service.Generation()}
	ds.Recipes, _ = stats["total_recipes"].(int)
	ds.Ingredients, _ = stats["total_ingredients"].(int)
	ds.Compatibilities, _ = stats["total_compatibilities"].(int)
	return ds
}

func (h *Handler) algorithms() map[string]bool {
	stats := h.service.SystemStats()
	avail, _ := stats["algorithm_availability"].(map[string]bool)
	return avail
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now(),
		Version:    h.cfg.App.Version,
		Data:       h.dataStatus(),
		Algorithms: h.algorithms(),
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
	if h.queue != nil {
		response.Queue = h.queue.GetQueueStatus()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：隊列已滿時回報尚未就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	data := h.dataStatus()
	if h.queue != nil {
		qs := h.queue.GetQueueStatus()
		if qs.MaxQueueSize > 0 && qs.QueueLength >= qs.MaxQueueSize {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "busy",
				"queue":  qs,
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"data":   data,
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

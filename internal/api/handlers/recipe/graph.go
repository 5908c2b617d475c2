package recipe

import (
	"context"
	"net/http"

	recipeService "flavorgraph/internal/core/recipe"
	"flavorgraph/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// GraphAnalysisRequest 圖分析請求
type GraphAnalysisRequest struct {
	AvailableIngredients []string `json:"available_ingredients"`
}

// AnalyzeGraph 圖統計、中心性與食譜分群
func (h *Handler) AnalyzeGraph(c *gin.Context) {
	var req GraphAnalysisRequest
	// 允許空請求體
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.WriteError(c, bindError(err))
			return
		}
	}

	value, err := h.compute(c, "analyze_graph", func(ctx context.Context) (interface{}, error) {
		return h.service.AnalyzeGraph(ctx, req.AvailableIngredients), nil
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, value)
}

// CreateCompatibility 新增食材相容關係
func (h *Handler) CreateCompatibility(c *gin.Context) {
	var comp recipeService.IngredientCompatibility
	if err := c.ShouldBindJSON(&comp); err != nil {
		common.WriteError(c, bindError(err))
		return
	}

	if err := h.service.AddCompatibility(c.Request.Context(), comp); err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comp)
}

// SystemStats 系統統計
func (h *Handler) SystemStats(c *gin.Context) {
	stats := h.service.SystemStats()
	stats["available_algorithms"] = h.service.Algorithms()
	if h.queue != nil {
		stats["queue"] = h.queue.GetQueueStatus()
	}
	c.JSON(http.StatusOK, stats)
}

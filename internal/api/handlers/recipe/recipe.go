package recipe

import (
	"context"
	"net/http"

	"flavorgraph/internal/core/queue"
	recipeService "flavorgraph/internal/core/recipe"
	"flavorgraph/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 食譜與食材處理程序
type Handler struct {
	service *recipeService.Service
	queue   *queue.Manager
}

// NewHandler 創建新的處理程序，queue 為 nil 時計算在請求 goroutine 上執行
func NewHandler(service *recipeService.Service, queueManager *queue.Manager) *Handler {
	return &Handler{
		service: service,
		queue:   queueManager,
	}
}

// listRecipesQuery 食譜列表查詢參數
type listRecipesQuery struct {
	Cuisine     string   `form:"cuisine"`
	MealType    string   `form:"meal_type" binding:"omitempty,oneof=breakfast lunch dinner snack dessert appetizer beverage"`
	Difficulty  string   `form:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced expert"`
	MaxPrepTime int      `form:"max_prep_time" binding:"omitempty,min=1"`
	DietaryTags []string `form:"dietary_tags"`
	Limit       int      `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset      int      `form:"offset" binding:"omitempty,min=0"`
}

// quickRecipesQuery 快速食譜查詢參數
type quickRecipesQuery struct {
	Ingredients []string `form:"ingredients"`
	MaxMinutes  int      `form:"max_minutes" binding:"omitempty,min=5,max=120"`
	Limit       int      `form:"limit" binding:"omitempty,min=1,max=20"`
}

// popularRecipesQuery 熱門食譜查詢參數
type popularRecipesQuery struct {
	Ingredients []string `form:"ingredients"`
	Limit       int      `form:"limit" binding:"omitempty,min=1,max=20"`
}

// SuggestRecipes 依可用食材推薦食譜
func (h *Handler) SuggestRecipes(c *gin.Context) {
	requestID := common.RequestID(c)

	var req recipeService.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteError(c, bindError(err))
		return
	}

	common.LogInfo("開始處理食譜推薦請求",
		zap.String("request_id", requestID),
		zap.Int("available_ingredients", len(req.AvailableIngredients)),
		zap.String("algorithm_preference", req.AlgorithmPreference),
	)

	value, err := h.compute(c, "suggest", func(ctx context.Context) (interface{}, error) {
		return h.service.Suggest(ctx, &req)
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}

	resp := value.(*recipeService.SuggestionResponse)
	common.LogInfo("食譜推薦完成",
		zap.String("request_id", requestID),
		zap.Int("matches", len(resp.Matches)),
		zap.Float64("analysis_time_ms", resp.AnalysisTimeMs),
		zap.Bool("cache_hit", resp.CacheHit),
	)
	c.JSON(http.StatusOK, resp)
}

// ListRecipes 列出食譜
func (h *Handler) ListRecipes(c *gin.Context) {
	var q listRecipesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.WriteError(c, bindError(err))
		return
	}

	items, total, page := h.service.ListRecipes(c.Request.Context(), recipeService.RecipeFilter{
		Cuisine:     q.Cuisine,
		MealType:    recipeService.MealType(q.MealType),
		Difficulty:  recipeService.Difficulty(q.Difficulty),
		MaxPrepTime: q.MaxPrepTime,
		DietaryTags: splitList(q.DietaryTags),
		Page:        common.Page{Limit: q.Limit, Offset: q.Offset},
	})

	c.JSON(http.StatusOK, common.ListResponse{
		Items:  items,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// QuickRecipes 在時間上限內可完成的食譜
func (h *Handler) QuickRecipes(c *gin.Context) {
	var q quickRecipesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.WriteError(c, bindError(err))
		return
	}
	if q.MaxMinutes == 0 {
		q.MaxMinutes = 30
	}

	matches := h.service.QuickRecipes(c.Request.Context(), splitList(q.Ingredients), q.MaxMinutes, q.Limit)
	c.JSON(http.StatusOK, gin.H{
		"max_minutes": q.MaxMinutes,
		"matches":     matches,
		"total":       len(matches),
	})
}

// PopularRecipes 熱門食譜
func (h *Handler) PopularRecipes(c *gin.Context) {
	var q popularRecipesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.WriteError(c, bindError(err))
		return
	}

	matches := h.service.PopularRecipes(c.Request.Context(), splitList(q.Ingredients), q.Limit)
	c.JSON(http.StatusOK, gin.H{
		"matches": matches,
		"total":   len(matches),
	})
}

// GetRecipe 取得單一食譜
func (h *Handler) GetRecipe(c *gin.Context) {
	r, err := h.service.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// CreateRecipe 新增或覆寫食譜
func (h *Handler) CreateRecipe(c *gin.Context) {
	var r recipeService.Recipe
	if err := c.ShouldBindJSON(&r); err != nil {
		common.WriteError(c, bindError(err))
		return
	}

	created, err := h.service.AddRecipe(c.Request.Context(), r)
	if err != nil {
		common.WriteError(c, err)
		return
	}

	common.LogInfo("新增食譜請求完成",
		zap.String("request_id", common.RequestID(c)),
		zap.String("recipe_id", created.ID),
	)
	c.JSON(http.StatusCreated, created)
}

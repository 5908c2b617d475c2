package recipe

import (
	"context"
	"net/http"

	recipeService "flavorgraph/internal/core/recipe"
	"flavorgraph/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// listIngredientsQuery 食材列表查詢參數
type listIngredientsQuery struct {
	Category    string   `form:"category" binding:"omitempty,oneof=protein vegetable fruit grain dairy spice herb condiment fat liquid sweetener nuts_seeds"`
	DietaryTags []string `form:"dietary_tags"`
	Search      string   `form:"search"`
	Limit       int      `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset      int      `form:"offset" binding:"omitempty,min=0"`
}

// substitutesQuery 替代品查詢參數
type substitutesQuery struct {
	Available []string `form:"available"`
}

// AnalyzeIngredients 只回傳缺口分析與替代建議
func (h *Handler) AnalyzeIngredients(c *gin.Context) {
	var req recipeService.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteError(c, bindError(err))
		return
	}

	value, err := h.compute(c, "analyze_ingredients", func(ctx context.Context) (interface{}, error) {
		return h.service.AnalyzeIngredients(ctx, &req)
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, value)
}

// ListIngredients 列出食材
func (h *Handler) ListIngredients(c *gin.Context) {
	var q listIngredientsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.WriteError(c, bindError(err))
		return
	}

	items, total, page := h.service.ListIngredients(c.Request.Context(), recipeService.IngredientFilter{
		Category:    recipeService.Category(q.Category),
		DietaryTags: splitList(q.DietaryTags),
		Search:      q.Search,
		Page:        common.Page{Limit: q.Limit, Offset: q.Offset},
	})

	c.JSON(http.StatusOK, common.ListResponse{
		Items:  items,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// GetIngredient 取得單一食材
func (h *Handler) GetIngredient(c *gin.Context) {
	ing, err := h.service.GetIngredient(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

// IngredientSubstitutes 在可用食材中尋找替代品
func (h *Handler) IngredientSubstitutes(c *gin.Context) {
	var q substitutesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.WriteError(c, bindError(err))
		return
	}

	resp, err := h.service.IngredientSubstitutes(c.Request.Context(), c.Param("id"), splitList(q.Available))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateIngredient 新增或覆寫食材
func (h *Handler) CreateIngredient(c *gin.Context) {
	var ing recipeService.Ingredient
	if err := c.ShouldBindJSON(&ing); err != nil {
		common.WriteError(c, bindError(err))
		return
	}

	created, err := h.service.AddIngredient(c.Request.Context(), ing)
	if err != nil {
		common.WriteError(c, err)
		return
	}

	common.LogInfo("新增食材請求完成",
		zap.String("request_id", common.RequestID(c)),
		zap.String("ingredient_id", created.ID),
	)
	c.JSON(http.StatusCreated, created)
}

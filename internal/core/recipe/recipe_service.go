package recipe

import (
	"context"
	"strings"

	"flavorgraph/internal/pkg/common"

	"go.uber.org/zap"
)

// RecipeFilter 食譜列表篩選條件
type RecipeFilter struct {
	Cuisine     string
	MealType    MealType
	Difficulty  Difficulty
	MaxPrepTime int
	DietaryTags []string
	Page        common.Page
}

// GetRecipe 依 id 取得食譜
func (s *Service) GetRecipe(ctx context.Context, id string) (*Recipe, error) {
	r, ok := s.current().catalog.Recipe(id)
	if !ok {
		return nil, common.ErrRecipeNotFound.WithMessage("recipe %q not found", id)
	}
	return cloneRecipe(r), nil
}

// ListRecipes 列出符合條件的食譜，回傳本頁內容與總數
func (s *Service) ListRecipes(ctx context.Context, f RecipeFilter) ([]*Recipe, int, common.Page) {
	page := f.Page.Normalize(20, 100)
	tags := lowerSet(f.DietaryTags)

	var matched []*Recipe
	for _, r := range s.current().catalog.Recipes() {
		if f.Cuisine != "" && !strings.EqualFold(r.Cuisine, f.Cuisine) {
			continue
		}
		if f.MealType != "" && !r.HasMealType(f.MealType) {
			continue
		}
		if f.Difficulty != "" && r.Difficulty != f.Difficulty {
			continue
		}
		if f.MaxPrepTime > 0 && r.PrepTimeMinutes > f.MaxPrepTime {
			continue
		}
		if len(tags) > 0 && !subsetOf(tags, lowerSet(r.DietaryTags)) {
			continue
		}
		matched = append(matched, r)
	}

	start, end := page.Bounds(len(matched))
	items := make([]*Recipe, 0, end-start)
	for _, r := range matched[start:end] {
		items = append(items, cloneRecipe(r))
	}
	return items, len(matched), page
}

// QuickRecipes 在時間上限內可完成的食譜
func (s *Service) QuickRecipes(ctx context.Context, available []string, maxMinutes, limit int) []RecipeMatch {
	idx := s.current()
	if limit <= 0 {
		limit = 5
	}
	matches := idx.greedy.QuickRecipes(idx.catalog.ResolveAll(available), maxMinutes, limit)
	common.LogDebug("快速食譜查詢", zap.Int("max_minutes", maxMinutes), zap.Int("matches", len(matches)))
	if matches == nil {
		return []RecipeMatch{}
	}
	return matches
}

// PopularRecipes 缺少食材不多的熱門食譜
func (s *Service) PopularRecipes(ctx context.Context, available []string, limit int) []RecipeMatch {
	idx := s.current()
	if limit <= 0 {
		limit = 5
	}
	matches := idx.greedy.PopularRecipes(idx.catalog.ResolveAll(available), limit)
	if matches == nil {
		return []RecipeMatch{}
	}
	return matches
}

package recipe

import (
	"context"
	"strings"

	"flavorgraph/internal/pkg/common"
)

// IngredientFilter 食材列表篩選條件
type IngredientFilter struct {
	Category    Category
	DietaryTags []string
	Search      string
	Page        common.Page
}

// SubstituteOption 替代食材與說明
type SubstituteOption struct {
	Ingredient        *Ingredient `json:"ingredient"`
	SimilarityScore   float64     `json:"similarity_score"`
	SubstitutionNotes string      `json:"substitution_notes"`
}

// SubstitutesResponse 單一食材的替代品查詢結果
type SubstitutesResponse struct {
	OriginalIngredient    *Ingredient        `json:"original_ingredient"`
	Substitutes           []SubstituteOption `json:"substitutes"`
	TotalSubstitutesFound int                `json:"total_substitutes_found"`
}

// GetIngredient 依 id 取得食材
func (s *Service) GetIngredient(ctx context.Context, id string) (*Ingredient, error) {
	ing, ok := s.current().catalog.Ingredient(id)
	if !ok {
		return nil, common.ErrIngredientNotFound.WithMessage("ingredient %q not found", id)
	}
	return cloneIngredient(ing), nil
}

// ListIngredients 列出符合條件的食材
func (s *Service) ListIngredients(ctx context.Context, f IngredientFilter) ([]*Ingredient, int, common.Page) {
	page := f.Page.Normalize(50, 200)
	tags := lowerSet(f.DietaryTags)
	search := strings.ToLower(strings.TrimSpace(f.Search))

	var matched []*Ingredient
	for _, ing := range s.current().catalog.Ingredients() {
		if f.Category != "" && ing.Category != f.Category {
			continue
		}
		if len(tags) > 0 && !subsetOf(tags, lowerSet(ing.DietaryTags)) {
			continue
		}
		if search != "" && !matchesSearch(ing, search) {
			continue
		}
		matched = append(matched, ing)
	}

	start, end := page.Bounds(len(matched))
	items := make([]*Ingredient, 0, end-start)
	for _, ing := range matched[start:end] {
		items = append(items, cloneIngredient(ing))
	}
	return items, len(matched), page
}

func matchesSearch(ing *Ingredient, search string) bool {
	if strings.Contains(strings.ToLower(ing.Name), search) {
		return true
	}
	for _, alias := range ing.Aliases {
		if strings.Contains(strings.ToLower(alias), search) {
			return true
		}
	}
	return false
}

// IngredientSubstitutes 以圖模型在可用食材中尋找替代品
func (s *Service) IngredientSubstitutes(ctx context.Context, id string, available []string) (*SubstitutesResponse, error) {
	idx := s.current()
	original, ok := idx.catalog.Ingredient(id)
	if !ok {
		return nil, common.ErrIngredientNotFound.WithMessage("ingredient %q not found", id)
	}

	subs := NewGraphWeightedFinder(idx.graph).Find(id, idx.catalog.ResolveAll(available))
	resp := &SubstitutesResponse{
		OriginalIngredient: cloneIngredient(original),
		Substitutes:        []SubstituteOption{},
	}
	for _, sub := range subs {
		ing, ok := idx.catalog.Ingredient(sub.IngredientID)
		if !ok {
			continue
		}
		resp.Substitutes = append(resp.Substitutes, SubstituteOption{
			Ingredient:        cloneIngredient(ing),
			SimilarityScore:   clamp01(sub.Score),
			SubstitutionNotes: idx.substitutionNotes(id, sub.IngredientID),
		})
	}
	resp.TotalSubstitutesFound = len(resp.Substitutes)
	return resp, nil
}

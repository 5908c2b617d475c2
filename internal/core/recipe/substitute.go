package recipe

// Substitute 替代食材與分數
type Substitute struct {
	IngredientID string  `json:"ingredient_id"`
	Score        float64 `json:"score"`
}

// SubstituteFinder 為缺少的食材尋找可用替代品
// 三種實作的取捨不同，結果也刻意不同
type SubstituteFinder interface {
	Name() string
	Find(ingredientID string, available IDSet) []Substitute
}

// DirectFirstFinder 先找宣告的替代品，再找同分類且標籤互為子集的食材，第一個命中即採用
type DirectFirstFinder struct {
	catalog *Catalog
}

// NewDirectFirstFinder 創建 direct-first 替代品搜尋
func NewDirectFirstFinder(c *Catalog) *DirectFirstFinder {
	return &DirectFirstFinder{catalog: c}
}

func (f *DirectFirstFinder) Name() string { return "direct-first" }

func (f *DirectFirstFinder) Find(ingredientID string, available IDSet) []Substitute {
	target, ok := f.catalog.Ingredient(ingredientID)
	if !ok {
		return nil
	}

	for _, sub := range target.CommonSubstitutes {
		if available.Has(sub) {
			return []Substitute{{IngredientID: sub, Score: 1}}
		}
	}

	targetTags := NewIDSet(target.DietaryTags...)
	for _, cand := range f.catalog.Ingredients() {
		if cand.ID == ingredientID || !available.Has(cand.ID) || cand.Category != target.Category {
			continue
		}
		candTags := NewIDSet(cand.DietaryTags...)
		if subsetOf(targetTags, candTags) || subsetOf(candTags, targetTags) {
			return []Substitute{{IngredientID: cand.ID, Score: 1}}
		}
	}
	return nil
}

// CategoryBroadFinder 先找宣告的替代品，再找同分類且標籤有交集（或皆無標籤）的食材
type CategoryBroadFinder struct {
	catalog *Catalog
}

// NewCategoryBroadFinder 創建 category-broad 替代品搜尋
func NewCategoryBroadFinder(c *Catalog) *CategoryBroadFinder {
	return &CategoryBroadFinder{catalog: c}
}

func (f *CategoryBroadFinder) Name() string { return "category-broad" }

func (f *CategoryBroadFinder) Find(ingredientID string, available IDSet) []Substitute {
	target, ok := f.catalog.Ingredient(ingredientID)
	if !ok {
		return nil
	}

	for _, sub := range target.CommonSubstitutes {
		if available.Has(sub) {
			return []Substitute{{IngredientID: sub, Score: 1}}
		}
	}

	targetTags := NewIDSet(target.DietaryTags...)
	for _, cand := range f.catalog.Ingredients() {
		if cand.ID == ingredientID || !available.Has(cand.ID) || cand.Category != target.Category {
			continue
		}
		candTags := NewIDSet(cand.DietaryTags...)
		if intersects(targetTags, candTags) || (len(targetTags) == 0 && len(candTags) == 0) {
			return []Substitute{{IngredientID: cand.ID, Score: 1}}
		}
	}
	return nil
}

// GraphWeightedFinder 以風味相似度排序替代品
type GraphWeightedFinder struct {
	graph *IngredientGraph
}

// NewGraphWeightedFinder 創建 graph-weighted 替代品搜尋
func NewGraphWeightedFinder(g *IngredientGraph) *GraphWeightedFinder {
	return &GraphWeightedFinder{graph: g}
}

func (f *GraphWeightedFinder) Name() string { return "graph-weighted" }

func (f *GraphWeightedFinder) Find(ingredientID string, available IDSet) []Substitute {
	return f.graph.FindSubstitutes(ingredientID, available)
}

package recipe

import (
	"container/heap"
	"fmt"
	"math"
	"sort"
	"strings"
)

var basicEquipment = NewIDSet("oven", "stove", "pan", "pot", "knife", "cutting board")

// GreedyMatcher 單次掃描的啟發式匹配，偏重速度
type GreedyMatcher struct {
	catalog  *Catalog
	finder   SubstituteFinder
	minScore float64
}

// NewGreedyMatcher 創建貪婪匹配器
func NewGreedyMatcher(c *Catalog, minScore float64) *GreedyMatcher {
	return &GreedyMatcher{
		catalog:  c,
		finder:   NewCategoryBroadFinder(c),
		minScore: minScore,
	}
}

// Match 回傳最多 maxResults 筆匹配
func (m *GreedyMatcher) Match(q *Query, maxResults int) ([]RecipeMatch, map[string]interface{}) {
	pq := &scoreHeap{}
	for _, r := range m.catalog.Recipes() {
		if !m.quickFilter(r, q) {
			continue
		}
		score := m.score(r, q)
		if score > m.minScore {
			heap.Push(pq, scoredRecipe{recipe: r, score: score})
		}
	}

	var matches []RecipeMatch
	for processed := 0; pq.Len() > 0 && processed < maxResults*2; processed++ {
		c := heap.Pop(pq).(scoredRecipe)
		matches = append(matches, m.detailedMatch(c.recipe, q, c.score))
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].MatchScore > matches[j].MatchScore })
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches, m.Insights()
}

// Insights 貪婪演算法的固定說明
func (m *GreedyMatcher) Insights() map[string]interface{} {
	return map[string]interface{}{
		"algorithm":             AlgorithmGreedy,
		"optimization_approach": "local_optimal",
		"speed_priority":        "high",
		"completeness":          "heuristic",
		"best_use_case":         "real_time_recommendations",
		"trade_offs":            "speed_vs_optimality",
	}
}

func (m *GreedyMatcher) quickFilter(r *Recipe, q *Query) bool {
	if !q.withinTimeLimits(r) {
		return false
	}
	if q.Difficulty != "" && r.Difficulty != q.Difficulty {
		return false
	}
	if q.MealType != "" && !r.HasMealType(q.MealType) {
		return false
	}
	if !q.meetsDietary(r) {
		return false
	}
	return !q.usesExcluded(r)
}

func (m *GreedyMatcher) score(r *Recipe, q *Query) float64 {
	sp := q.split(r)
	if len(sp.required) == 0 {
		return 1
	}

	ratio := float64(len(sp.available)) / float64(len(sp.required))
	score := ratio * ratio
	if len(sp.optional) > 0 {
		score += float64(sp.optHave) / float64(len(sp.optional)) * 0.1
	}

	missing := len(sp.missing)
	if missing > q.MaxMissing {
		return 0
	}
	score -= float64(missing) / float64(len(sp.required)) * 0.3

	if r.PopularityScore > 0 {
		score += math.Min(r.PopularityScore*0.1, 0.2)
	}
	if r.AverageRating != nil && *r.AverageRating > 0 {
		score += *r.AverageRating / 5 * 0.15
	}
	if q.Cuisine != "" && r.Cuisine != "" && strings.EqualFold(r.Cuisine, q.Cuisine) {
		score += 0.15
	}

	total := r.TotalTime()
	if total <= 30 {
		score += 0.1
	} else if total > 120 {
		score -= 0.1
	}
	return clamp01(score)
}

func (m *GreedyMatcher) detailedMatch(r *Recipe, q *Query, initial float64) RecipeMatch {
	sp := q.split(r)

	direct := IDSet{}
	var available []string
	for _, line := range r.Ingredients {
		if q.Available.Has(line.IngredientID) {
			available = appendUnique(available, direct, line.IngredientID)
		}
	}

	var substitutable []string
	for _, id := range sp.missing {
		if len(m.finder.Find(id, q.Available)) > 0 {
			substitutable = append(substitutable, id)
		}
	}

	score := m.refine(initial, r, len(sp.missing), len(substitutable))
	confidence := greedyConfidence(score, len(sp.missing), len(sp.required))

	return RecipeMatch{
		Recipe:                   r,
		MatchScore:               score,
		AvailableIngredients:     nonNil(available),
		MissingIngredients:       nonNil(sp.missing),
		SubstitutableIngredients: nonNil(substitutable),
		ConfidenceScore:          confidence,
		AlgorithmUsed:            AlgorithmGreedy,
		Reasoning:                greedyReasoning(len(sp.available), len(sp.required), len(sp.missing), len(substitutable), r),
	}
}

func (m *GreedyMatcher) refine(score float64, r *Recipe, missing, substitutable int) float64 {
	if substitutable > 0 {
		score += float64(substitutable) / math.Max(float64(missing), 1) * 0.2
	}
	if c := r.IngredientComplexityScore; c != nil && *c != 0 && missing > 2 && *c > 0.7 {
		score -= 0.1
	}
	advanced := IDSet{}
	for _, eq := range r.EquipmentNeeded {
		if !basicEquipment.Has(eq) {
			advanced.Add(eq)
		}
	}
	score -= float64(len(advanced)) * 0.05
	return clamp01(score)
}

func greedyConfidence(score float64, missing, required int) float64 {
	confidence := score
	if required > 0 {
		confidence -= float64(missing) / float64(required) * 0.25
	}
	if score > 0.8 {
		confidence = math.Min(1, confidence+0.1)
	}
	confidence *= 0.95
	return clamp01(confidence)
}

func greedyReasoning(direct, required, missing, substitutable int, r *Recipe) string {
	var parts []string
	if required > 0 {
		parts = append(parts, fmt.Sprintf("%.1f%% direct ingredient match", float64(direct)/float64(required)*100))
	}
	if missing > 0 {
		parts = append(parts, fmt.Sprintf("%d missing ingredients", missing))
	}
	if substitutable > 0 {
		parts = append(parts, fmt.Sprintf("%d substitutes available", substitutable))
	}
	if r.Difficulty != "" {
		parts = append(parts, fmt.Sprintf("%s difficulty", r.Difficulty))
	}
	parts = append(parts, fmt.Sprintf("%d minutes total time", r.TotalTime()))
	parts = append(parts, "selected by greedy algorithm for speed")
	return strings.Join(parts, ", ")
}

// PopularRecipes 依熱門程度挑選缺少食材不超過 3 個的食譜
func (m *GreedyMatcher) PopularRecipes(available IDSet, maxResults int) []RecipeMatch {
	recipes := m.catalog.Recipes()
	sort.SliceStable(recipes, func(i, j int) bool {
		return recipes[i].PopularityScore > recipes[j].PopularityScore
	})

	q := &Query{Available: available}
	var matches []RecipeMatch
	for _, r := range recipes {
		if len(matches) >= maxResults {
			break
		}
		sp := q.split(r)
		if len(sp.missing) > 3 {
			continue
		}
		score := 1 - float64(len(sp.missing))/math.Max(float64(len(sp.required)), 1)*0.5
		matches = append(matches, RecipeMatch{
			Recipe:                   r,
			MatchScore:               score,
			AvailableIngredients:     nonNil(sp.available),
			MissingIngredients:       nonNil(sp.missing),
			SubstitutableIngredients: []string{},
			ConfidenceScore:          score * 0.9,
			AlgorithmUsed:            "greedy_popularity",
			Reasoning:                fmt.Sprintf("Popular recipe with %d missing ingredients", len(sp.missing)),
		})
	}
	return matches
}

// DefaultQuickRecipeMinutes 快速食譜預設時間上限
const DefaultQuickRecipeMinutes = 30

// QuickRecipes 挑選總時間不超過上限且缺少食材不超過 2 個的食譜，由快到慢
func (m *GreedyMatcher) QuickRecipes(available IDSet, maxMinutes, maxResults int) []RecipeMatch {
	if maxMinutes <= 0 {
		maxMinutes = DefaultQuickRecipeMinutes
	}

	var quick []*Recipe
	for _, r := range m.catalog.Recipes() {
		if r.TotalTime() <= maxMinutes {
			quick = append(quick, r)
		}
	}
	sort.SliceStable(quick, func(i, j int) bool { return quick[i].TotalTime() < quick[j].TotalTime() })

	q := &Query{Available: available}
	var matches []RecipeMatch
	for _, r := range quick {
		if len(matches) >= maxResults {
			break
		}
		sp := q.split(r)
		if len(sp.missing) > 2 {
			continue
		}
		total := r.TotalTime()
		timeScore := 1 - float64(total)/float64(maxMinutes)*0.3
		ingredientScore := 1.0
		if len(sp.required) > 0 {
			ingredientScore = 1 - float64(len(sp.missing))/float64(len(sp.required))*0.4
		}
		score := (timeScore + ingredientScore) / 2
		matches = append(matches, RecipeMatch{
			Recipe:                   r,
			MatchScore:               score,
			AvailableIngredients:     nonNil(sp.available),
			MissingIngredients:       nonNil(sp.missing),
			SubstitutableIngredients: []string{},
			ConfidenceScore:          score * 0.85,
			AlgorithmUsed:            "greedy_time",
			Reasoning:                fmt.Sprintf("Quick recipe (%d min) with %d missing ingredients", total, len(sp.missing)),
		})
	}
	return matches
}

type scoredRecipe struct {
	recipe *Recipe
	score  float64
}

// scoreHeap 分數最高者優先，同分時 id 較小者優先
type scoreHeap []scoredRecipe

func (h scoreHeap) Len() int { return len(h) }
func (h scoreHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score > h[j].score
	}
	return h[i].recipe.ID < h[j].recipe.ID
}
func (h scoreHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *scoreHeap) Push(x interface{}) { *h = append(*h, x.(scoredRecipe)) }
func (h *scoreHeap) Pop() interface{} {
	old := *h
	item := old[len(old)-1]
	*h = old[:len(old)-1]
	return item
}

package recipe

import (
	"fmt"
	"sort"
	"strings"

	"flavorgraph/internal/infrastructure/metrics"
)

// DefaultMaxExplorations 回溯搜尋預設節點上限
const DefaultMaxExplorations = 10000

// BacktrackingMatcher 有上限的窮舉搜尋，偏重結果完整性
type BacktrackingMatcher struct {
	catalog         *Catalog
	finder          SubstituteFinder
	minScore        float64
	maxExplorations int
}

// NewBacktrackingMatcher 創建回溯匹配器
func NewBacktrackingMatcher(c *Catalog, minScore float64, maxExplorations int) *BacktrackingMatcher {
	if maxExplorations <= 0 {
		maxExplorations = DefaultMaxExplorations
	}
	return &BacktrackingMatcher{
		catalog:         c,
		finder:          NewDirectFirstFinder(c),
		minScore:        minScore,
		maxExplorations: maxExplorations,
	}
}

// SearchStats 單次搜尋的統計
type SearchStats struct {
	Explorations    int
	MaxExplorations int
	SolutionsFound  int
	LimitReached    bool
}

// Insights 轉為演算法說明
func (s SearchStats) Insights() map[string]interface{} {
	completeness := "exhaustive"
	if s.LimitReached || s.Explorations >= s.MaxExplorations {
		completeness = "limited"
	}
	return map[string]interface{}{
		"algorithm":              AlgorithmBacktracking,
		"explorations_performed": s.Explorations,
		"max_explorations_limit": s.MaxExplorations,
		"solutions_found":        s.SolutionsFound,
		"search_completeness":    completeness,
		"optimization_approach":  "global_optimal",
	}
}

// search 單次搜尋的狀態
type search struct {
	m          *BacktrackingMatcher
	q          *Query
	candidates []*Recipe
	maxResults int
	best       []RecipeMatch
	bestIDs    IDSet
	solution   []*Recipe
	visits     int
	limitHit   bool
}

// Match 回傳最多 maxResults 筆匹配
func (m *BacktrackingMatcher) Match(q *Query, maxResults int) ([]RecipeMatch, map[string]interface{}) {
	matches, stats := m.Search(q, maxResults)
	return matches, stats.Insights()
}

// Search 執行回溯搜尋並回傳統計
func (m *BacktrackingMatcher) Search(q *Query, maxResults int) ([]RecipeMatch, SearchStats) {
	s := &search{
		m:          m,
		q:          q,
		candidates: m.filterCandidates(q),
		maxResults: maxResults,
		bestIDs:    IDSet{},
	}
	if len(s.candidates) > 0 {
		s.explore(0)
	}

	sort.SliceStable(s.best, func(i, j int) bool { return s.best[i].MatchScore > s.best[j].MatchScore })
	stats := SearchStats{
		Explorations:    s.visits,
		MaxExplorations: m.maxExplorations,
		SolutionsFound:  len(s.best),
		LimitReached:    s.limitHit,
	}
	metrics.RecordExplorations(s.visits)

	matches := s.best
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches, stats
}

func (s *search) explore(idx int) {
	if s.visits >= s.m.maxExplorations {
		s.limitHit = true
		return
	}
	s.visits++

	if len(s.solution) >= s.maxResults || idx >= len(s.candidates) {
		if len(s.solution) > 0 {
			s.evaluate()
		}
		return
	}

	if len(s.best) >= s.maxResults*2 && len(s.best) > 0 {
		lowest := s.best[0].MatchScore
		for _, b := range s.best[1:] {
			if b.MatchScore < lowest {
				lowest = b.MatchScore
			}
		}
		if lowest > 0.8 {
			return
		}
	}

	r := s.candidates[idx]
	if s.m.viable(r, s.q) {
		s.solution = append(s.solution, r)
		s.explore(idx + 1)
		s.solution = s.solution[:len(s.solution)-1]
	}
	s.explore(idx + 1)
}

func (s *search) evaluate() {
	for _, r := range s.solution {
		if s.bestIDs.Has(r.ID) {
			continue
		}
		match := s.m.match(r, s.q)
		if match.MatchScore > s.m.minScore {
			s.bestIDs.Add(r.ID)
			s.best = append(s.best, match)
		}
	}
}

func (m *BacktrackingMatcher) filterCandidates(q *Query) []*Recipe {
	var out []*Recipe
	for _, r := range m.catalog.Recipes() {
		if !q.withinTimeLimits(r) {
			continue
		}
		if q.Difficulty != "" && r.Difficulty != q.Difficulty {
			continue
		}
		if q.MealType != "" && !r.HasMealType(q.MealType) {
			continue
		}
		if q.Cuisine != "" && r.Cuisine != "" && !strings.EqualFold(r.Cuisine, q.Cuisine) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// viable 飲食偏好、排除食材與缺少食材上限
func (m *BacktrackingMatcher) viable(r *Recipe, q *Query) bool {
	if !q.meetsDietary(r) || q.usesExcluded(r) {
		return false
	}
	return len(q.split(r).missing) <= q.MaxMissing
}

func (m *BacktrackingMatcher) match(r *Recipe, q *Query) RecipeMatch {
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

	score := m.score(r, q, sp)
	return RecipeMatch{
		Recipe:                   r,
		MatchScore:               score,
		AvailableIngredients:     nonNil(available),
		MissingIngredients:       nonNil(sp.missing),
		SubstitutableIngredients: nonNil(substitutable),
		ConfidenceScore:          backtrackingConfidence(score, len(sp.missing), len(sp.required)),
		AlgorithmUsed:            AlgorithmBacktracking,
		Reasoning:                backtrackingReasoning(len(sp.available), len(sp.required), len(sp.missing), len(substitutable)),
	}
}

func (m *BacktrackingMatcher) score(r *Recipe, q *Query, sp ingredientSplit) float64 {
	if len(sp.required) == 0 {
		return 1
	}

	score := float64(len(sp.available)) / float64(len(sp.required))
	if len(sp.optional) > 0 {
		score += float64(sp.optHave) / float64(len(sp.optional)) * 0.15
	}
	if q.Difficulty != "" && r.Difficulty != q.Difficulty {
		score -= 0.1
	}
	if q.MaxPrepTime > 0 {
		if r.PrepTimeMinutes <= q.MaxPrepTime {
			score += 0.05
		} else {
			score -= 0.2
		}
	}
	if q.MaxCookTime > 0 {
		if r.CookTimeMinutes <= q.MaxCookTime {
			score += 0.05
		} else {
			score -= 0.2
		}
	}
	if q.Cuisine != "" && r.Cuisine != "" && strings.EqualFold(r.Cuisine, q.Cuisine) {
		score += 0.1
	}
	if q.MealType != "" && r.HasMealType(q.MealType) {
		score += 0.1
	}
	return clamp01(score)
}

func backtrackingConfidence(score float64, missing, required int) float64 {
	confidence := score
	if required > 0 {
		confidence -= float64(missing) / float64(required) * 0.3
	}
	if score > 0.9 {
		confidence += 0.1
		if confidence > 1 {
			confidence = 1
		}
	}
	return clamp01(confidence)
}

func backtrackingReasoning(direct, required, missing, substitutable int) string {
	var parts []string
	if required > 0 {
		parts = append(parts, fmt.Sprintf("%.1f%% ingredient match (%d/%d)",
			float64(direct)/float64(required)*100, direct, required))
	}
	if missing > 0 {
		parts = append(parts, fmt.Sprintf("%d missing ingredients", missing))
	}
	if substitutable > 0 {
		parts = append(parts, fmt.Sprintf("%d substitutable ingredients found", substitutable))
	}
	parts = append(parts, "found through exhaustive backtracking search")
	return strings.Join(parts, ", ")
}

package recipe

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type nodeKind int

const (
	kindIngredient nodeKind = iota
	kindRecipe
)

// GraphOptions 圖模型的門檻設定
type GraphOptions struct {
	MinMatchScore             float64
	MinSubstitutionSimilarity float64
	MaxSubstitutionResults    int
}

// IngredientGraph 食材與食譜的無向加權圖
type IngredientGraph struct {
	opts      GraphOptions
	catalog   *Catalog
	adj       map[string]map[string]float64
	kinds     map[string]nodeKind
	nodes     []string
	edgeCount int
}

// NewIngredientGraph 由目錄建立圖：先加入所有食材，再加入食譜，最後加入搭配關係
func NewIngredientGraph(c *Catalog, opts GraphOptions) *IngredientGraph {
	g := &IngredientGraph{
		opts:    opts,
		catalog: c,
		adj:     make(map[string]map[string]float64),
		kinds:   make(map[string]nodeKind),
	}
	for _, ing := range c.Ingredients() {
		g.addNode(ing.ID, kindIngredient)
	}
	for _, r := range c.Recipes() {
		g.addRecipe(r)
	}
	for _, comp := range c.Compatibilities() {
		g.addCompatibility(comp)
	}
	return g
}

func (g *IngredientGraph) addNode(id string, kind nodeKind) {
	if _, exists := g.adj[id]; !exists {
		g.adj[id] = make(map[string]float64)
		g.nodes = append(g.nodes, id)
	}
	g.kinds[id] = kind
}

func (g *IngredientGraph) addEdge(a, b string, weight float64) {
	if a == b {
		return
	}
	if _, exists := g.adj[a][b]; !exists {
		g.edgeCount++
	}
	g.adj[a][b] = weight
	g.adj[b][a] = weight
}

func (g *IngredientGraph) addRecipe(r *Recipe) {
	g.addNode(r.ID, kindRecipe)
	for _, line := range r.Ingredients {
		if _, ok := g.catalog.Ingredient(line.IngredientID); !ok {
			continue
		}
		g.addEdge(r.ID, line.IngredientID, ingredientImportance(line))
	}
}

// ingredientImportance 數量門檻不考慮單位
func ingredientImportance(line RecipeIngredient) float64 {
	w := 1.0
	if line.IsOptional {
		w *= 0.5
	}
	if line.Quantity > 100 {
		w *= 1.2
	}
	return w
}

func (g *IngredientGraph) addCompatibility(comp IngredientCompatibility) {
	_, ok1 := g.catalog.Ingredient(comp.Ingredient1ID)
	_, ok2 := g.catalog.Ingredient(comp.Ingredient2ID)
	if !ok1 || !ok2 {
		return
	}
	g.addEdge(comp.Ingredient1ID, comp.Ingredient2ID, comp.CompatibilityScore)
}

// FlavorSimilarity 兩個食材風味向量的餘弦相似度，最小為 0
func (g *IngredientGraph) FlavorSimilarity(a, b string) float64 {
	ingA, okA := g.catalog.Ingredient(a)
	ingB, okB := g.catalog.Ingredient(b)
	if !okA || !okB {
		return 0
	}

	va, vb := ingA.FlavorProfile.Vector(), ingB.FlavorProfile.Vector()
	var dot, na, nb float64
	for i := range va {
		dot += va[i] * vb[i]
		na += va[i] * va[i]
		nb += vb[i] * vb[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// FindSubstitutes 依相似度排序的替代食材，最多 MaxSubstitutionResults 個
func (g *IngredientGraph) FindSubstitutes(ingredientID string, available IDSet) []Substitute {
	target, ok := g.catalog.Ingredient(ingredientID)
	if !ok {
		return nil
	}

	var subs []Substitute
	// 同一食材只保留最高分
	pos := map[string]int{}

	for _, id := range target.CommonSubstitutes {
		if _, dup := pos[id]; dup || id == ingredientID || !available.Has(id) {
			continue
		}
		pos[id] = len(subs)
		subs = append(subs, Substitute{IngredientID: id, Score: g.FlavorSimilarity(ingredientID, id)})
	}

	targetTags := NewIDSet(target.DietaryTags...)
	for _, cand := range g.catalog.Ingredients() {
		if cand.ID == ingredientID || !available.Has(cand.ID) {
			continue
		}
		score := g.FlavorSimilarity(ingredientID, cand.ID)
		if cand.Category == target.Category {
			score *= 1.2
		}
		// 目標的飲食標籤不全包含於候選時降低分數
		if !subsetOf(targetTags, NewIDSet(cand.DietaryTags...)) {
			score *= 0.7
		}
		if score <= g.opts.MinSubstitutionSimilarity {
			continue
		}
		if i, ok := pos[cand.ID]; ok {
			if score > subs[i].Score {
				subs[i].Score = score
			}
			continue
		}
		pos[cand.ID] = len(subs)
		subs = append(subs, Substitute{IngredientID: cand.ID, Score: score})
	}

	sort.SliceStable(subs, func(i, j int) bool { return subs[i].Score > subs[j].Score })
	if limit := g.opts.MaxSubstitutionResults; limit > 0 && len(subs) > limit {
		subs = subs[:limit]
	}
	return subs
}

// SubstitutionMatch 缺少食材與其最佳替代品
type SubstitutionMatch struct {
	IngredientID string  `json:"ingredient_id"`
	SubstituteID string  `json:"substitute"`
	Score        float64 `json:"score"`
}

// MatchAnalysis 食譜匹配分析
type MatchAnalysis struct {
	Score                    float64             `json:"score"`
	DirectMatches            []string            `json:"direct_matches"`
	MissingIngredients       []string            `json:"missing_ingredients"`
	Substitutions            []SubstitutionMatch `json:"substitutable_ingredients"`
	OptionalMatches          []string            `json:"optional_matches"`
	TotalRequiredIngredients int                 `json:"total_required_ingredients"`
	MatchPercentage          float64             `json:"match_percentage"`
}

// MatchScore 計算食譜與可用食材的匹配程度，未知食譜回傳 false
func (g *IngredientGraph) MatchScore(recipeID string, available IDSet) (MatchAnalysis, bool) {
	r, ok := g.catalog.Recipe(recipeID)
	if !ok {
		return MatchAnalysis{}, false
	}

	var a MatchAnalysis
	required, optional := IDSet{}, IDSet{}
	var requiredOrder, optionalOrder []string
	for _, line := range r.Ingredients {
		if line.IsOptional {
			optionalOrder = appendUnique(optionalOrder, optional, line.IngredientID)
		} else {
			requiredOrder = appendUnique(requiredOrder, required, line.IngredientID)
		}
	}

	direct := IDSet{}
	for _, line := range r.Ingredients {
		if available.Has(line.IngredientID) {
			a.DirectMatches = appendUnique(a.DirectMatches, direct, line.IngredientID)
		}
	}

	directRequired := 0
	subTotal := 0.0
	for _, id := range requiredOrder {
		if available.Has(id) {
			directRequired++
			continue
		}
		subs := g.FindSubstitutes(id, available)
		if len(subs) == 0 {
			a.MissingIngredients = append(a.MissingIngredients, id)
			continue
		}
		a.Substitutions = append(a.Substitutions, SubstitutionMatch{
			IngredientID: id,
			SubstituteID: subs[0].IngredientID,
			Score:        subs[0].Score,
		})
		subTotal += subs[0].Score
	}

	for _, id := range optionalOrder {
		if available.Has(id) {
			a.OptionalMatches = append(a.OptionalMatches, id)
		}
	}

	total := len(requiredOrder)
	base := 1.0
	if total > 0 {
		base = float64(directRequired)/float64(total) + subTotal/float64(total)*0.8
	}
	optionalBonus := float64(len(a.OptionalMatches)) / math.Max(float64(len(optionalOrder)), 1) * 0.1
	missingPenalty := float64(len(a.MissingIngredients)) / math.Max(float64(total), 1) * 0.3

	a.Score = clamp01(base + optionalBonus - missingPenalty)
	a.TotalRequiredIngredients = total
	a.MatchPercentage = float64(directRequired) / math.Max(float64(total), 1)
	return a, true
}

// Recommend 以圖分析推薦食譜，分數由高到低
func (g *IngredientGraph) Recommend(available IDSet, maxResults int) []RecipeMatch {
	type scored struct {
		recipe   *Recipe
		analysis MatchAnalysis
	}

	var candidates []scored
	for _, r := range g.catalog.Recipes() {
		a, ok := g.MatchScore(r.ID, available)
		if !ok || a.Score <= g.opts.MinMatchScore {
			continue
		}
		candidates = append(candidates, scored{recipe: r, analysis: a})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].analysis.Score > candidates[j].analysis.Score
	})
	if maxResults >= 0 && len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	matches := make([]RecipeMatch, 0, len(candidates))
	for _, c := range candidates {
		subIDs := make([]string, 0, len(c.analysis.Substitutions))
		for _, s := range c.analysis.Substitutions {
			subIDs = append(subIDs, s.IngredientID)
		}
		matches = append(matches, RecipeMatch{
			Recipe:                   c.recipe,
			MatchScore:               c.analysis.Score,
			AvailableIngredients:     nonNil(c.analysis.DirectMatches),
			MissingIngredients:       nonNil(c.analysis.MissingIngredients),
			SubstitutableIngredients: subIDs,
			ConfidenceScore:          math.Min(c.analysis.Score*1.2, 1),
			AlgorithmUsed:            "graph_theory",
			Reasoning: fmt.Sprintf("Graph analysis found %d direct matches and %d substitutable ingredients",
				len(c.analysis.DirectMatches), len(c.analysis.Substitutions)),
		})
	}
	return matches
}

// Clusters 找出至少共用 minShared 個食材的食譜群組
func (g *IngredientGraph) Clusters(minShared int) map[string][]string {
	recipes := g.catalog.Recipes()
	ingredientSets := make([]IDSet, len(recipes))
	for i, r := range recipes {
		s := IDSet{}
		for _, line := range r.Ingredients {
			s.Add(line.IngredientID)
		}
		ingredientSets[i] = s
	}

	var keys []string
	groups := make(map[string][]string)
	for i := 0; i < len(recipes); i++ {
		for j := i + 1; j < len(recipes); j++ {
			var shared []string
			for id := range ingredientSets[i] {
				if ingredientSets[j].Has(id) {
					shared = append(shared, id)
				}
			}
			if len(shared) < minShared {
				continue
			}
			sort.Strings(shared)
			key := strings.Join(shared, "\x1f")
			if _, exists := groups[key]; !exists {
				keys = append(keys, key)
			}
			groups[key] = append(groups[key], recipes[i].ID, recipes[j].ID)
		}
	}

	clusters := make(map[string][]string)
	for i, key := range keys {
		seen := IDSet{}
		var members []string
		for _, id := range groups[key] {
			members = appendUnique(members, seen, id)
		}
		if len(members) > 1 {
			clusters[fmt.Sprintf("cluster_%d", i)] = members
		}
	}
	return clusters
}

// Statistics 圖結構統計
func (g *IngredientGraph) Statistics() map[string]interface{} {
	n := len(g.nodes)
	avgDegree, density := 0.0, 0.0
	if n > 0 {
		avgDegree = 2 * float64(g.edgeCount) / float64(n)
	}
	if n > 1 {
		density = 2 * float64(g.edgeCount) / (float64(n) * float64(n-1))
	}

	return map[string]interface{}{
		"total_nodes":      n,
		"total_edges":      g.edgeCount,
		"ingredient_nodes": g.catalog.IngredientCount(),
		"recipe_nodes":     g.catalog.RecipeCount(),
		"average_degree":   avgDegree,
		"density":          density,
		"is_connected":     g.isConnected(),
	}
}

func (g *IngredientGraph) isConnected() bool {
	if len(g.nodes) == 0 {
		return false
	}
	visited := IDSet{}
	queue := []string{g.nodes[0]}
	visited.Add(g.nodes[0])
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range g.adj[cur] {
			if !visited.Has(next) {
				visited.Add(next)
				queue = append(queue, next)
			}
		}
	}
	return len(visited) == len(g.nodes)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

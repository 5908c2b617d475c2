package recipe

import (
	"context"
	"fmt"
	"sort"

	"flavorgraph/internal/pkg/common"

	"go.uber.org/zap"
)

// CentralityEntry 食材中心性
type CentralityEntry struct {
	IngredientID string  `json:"ingredient_id"`
	Name         string  `json:"name"`
	Centrality   float64 `json:"centrality"`
}

// AvailableIngredientAnalysis 可用食材在網路中的重要性
type AvailableIngredientAnalysis struct {
	IngredientID    string  `json:"ingredient_id"`
	CentralityScore float64 `json:"centrality_score"`
	ImportanceRank  string  `json:"importance_rank"`
}

// GraphAnalysis 圖分析結果
type GraphAnalysis struct {
	GraphStatistics              map[string]interface{}                 `json:"graph_statistics"`
	IngredientCentrality         []CentralityEntry                      `json:"ingredient_centrality"`
	RecipeClusters               map[string][]string                    `json:"recipe_clusters"`
	AvailableIngredientsAnalysis map[string]AvailableIngredientAnalysis `json:"available_ingredients_analysis"`
	KeyMissingIngredients        []CentralityEntry                      `json:"key_missing_ingredients"`
}

// DefaultClusterMinShared 食譜分群所需的共用食材數
const DefaultClusterMinShared = 3

// AnalyzeGraph 回傳圖統計、食材中心性與食譜分群
func (s *Service) AnalyzeGraph(ctx context.Context, available []string) *GraphAnalysis {
	idx := s.current()
	centrality := s.centrality(idx)
	ranked := rankCentrality(idx.catalog, centrality)

	resp := &GraphAnalysis{
		GraphStatistics:              idx.graph.Statistics(),
		IngredientCentrality:         ranked,
		RecipeClusters:               idx.graph.Clusters(DefaultClusterMinShared),
		AvailableIngredientsAnalysis: map[string]AvailableIngredientAnalysis{},
		KeyMissingIngredients:        []CentralityEntry{},
	}
	if len(resp.IngredientCentrality) > 20 {
		resp.IngredientCentrality = resp.IngredientCentrality[:20]
	}

	for _, name := range available {
		id, ok := idx.catalog.Resolve(name)
		if !ok {
			continue
		}
		score, ok := centrality[id]
		if !ok {
			continue
		}
		resp.AvailableIngredientsAnalysis[name] = AvailableIngredientAnalysis{
			IngredientID:    id,
			CentralityScore: score,
			ImportanceRank:  importanceRank(score),
		}
	}

	have := idx.catalog.ResolveAll(available)
	top := ranked
	if len(top) > 10 {
		top = top[:10]
	}
	for _, e := range top {
		if !have.Has(e.IngredientID) {
			resp.KeyMissingIngredients = append(resp.KeyMissingIngredients, e)
		}
	}
	return resp
}

func importanceRank(score float64) string {
	switch {
	case score > 0.1:
		return "high"
	case score > 0.05:
		return "medium"
	default:
		return "low"
	}
}

// rankCentrality 由高到低排序，同分保留食材插入順序
func rankCentrality(c *Catalog, centrality map[string]float64) []CentralityEntry {
	entries := make([]CentralityEntry, 0, len(centrality))
	for _, ing := range c.Ingredients() {
		score, ok := centrality[ing.ID]
		if !ok {
			continue
		}
		entries = append(entries, CentralityEntry{IngredientID: ing.ID, Name: ing.Name, Centrality: score})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Centrality > entries[j].Centrality })
	return entries
}

// centrality 在存活時間內重用同一版本索引的計算結果，存活時間不大於 0 時每次重新計算
func (s *Service) centrality(idx *indices) map[string]float64 {
	idx.centralityMu.Lock()
	defer idx.centralityMu.Unlock()

	now := s.now()
	if idx.centrality != nil && now.Sub(idx.centralityAt) < s.opts.CentralityCacheTTL {
		common.LogCacheHit("centrality", generationKey(idx))
		return idx.centrality
	}

	common.LogCacheMiss("centrality", generationKey(idx))
	start := now
	idx.centrality = idx.graph.Centrality()
	idx.centralityAt = now
	common.LogDebug("中心性已計算",
		zap.Int("ingredients", len(idx.centrality)),
		zap.Duration("elapsed", s.now().Sub(start)),
	)
	return idx.centrality
}

func generationKey(idx *indices) string {
	return fmt.Sprintf("generation:%d", idx.generation)
}

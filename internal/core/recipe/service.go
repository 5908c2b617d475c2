package recipe

import (
	"context"
	"strings"
	"sync"
	"time"

	"flavorgraph/internal/core/cache"
	"flavorgraph/internal/infrastructure/config"
	"flavorgraph/internal/infrastructure/metrics"
	"flavorgraph/internal/pkg/common"

	"go.uber.org/zap"
)

// Options 匹配引擎參數
type Options struct {
	DefaultAlgorithm                string
	MaxRecipeResults                int
	MaxSubstitutionResults          int
	MaxExplorations                 int
	MinRecipeMatchScore             float64
	MinSubstitutionSimilarity       float64
	GreedyRecipeThreshold           int
	GreedyIngredientThreshold       int
	BacktrackingRecipeThreshold     int
	BacktrackingIngredientThreshold int
	CentralityCacheTTL              time.Duration
}

// DefaultOptions 預設參數
func DefaultOptions() Options {
	return Options{
		DefaultAlgorithm:                AlgorithmGraph,
		MaxRecipeResults:                10,
		MaxSubstitutionResults:          5,
		MaxExplorations:                 DefaultMaxExplorations,
		MinRecipeMatchScore:             0.1,
		MinSubstitutionSimilarity:       0.3,
		GreedyRecipeThreshold:           1000,
		GreedyIngredientThreshold:       20,
		BacktrackingRecipeThreshold:     100,
		BacktrackingIngredientThreshold: 10,
		CentralityCacheTTL:              time.Hour,
	}
}

// OptionsFromConfig 由設定檔建立參數
func OptionsFromConfig(cfg *config.Config) Options {
	m := cfg.Matching
	return Options{
		DefaultAlgorithm:                m.DefaultAlgorithm,
		MaxRecipeResults:                m.MaxRecipeResults,
		MaxSubstitutionResults:          m.MaxSubstitutionResults,
		MaxExplorations:                 m.BacktrackingMaxExplorations,
		MinRecipeMatchScore:             m.MinRecipeMatchScore,
		MinSubstitutionSimilarity:       m.MinSubstitutionSimilarity,
		GreedyRecipeThreshold:           m.GreedyRecipeThreshold,
		GreedyIngredientThreshold:       m.GreedyIngredientThreshold,
		BacktrackingRecipeThreshold:     m.BacktrackingRecipeThreshold,
		BacktrackingIngredientThreshold: m.BacktrackingIngredientThreshold,
		CentralityCacheTTL:              m.CentralityCacheTTL(),
	}
}

// matcher 推薦策略
type matcher interface {
	Match(q *Query, maxResults int) ([]RecipeMatch, map[string]interface{})
}

type graphMatcher struct {
	graph *IngredientGraph
}

func (m *graphMatcher) Match(q *Query, maxResults int) ([]RecipeMatch, map[string]interface{}) {
	return m.graph.Recommend(q.Available, maxResults), map[string]interface{}{
		"graph_statistics":    m.graph.Statistics(),
		"centrality_analysis": "available",
	}
}

// indices 某一版本目錄的所有匹配索引，建立後只讀
type indices struct {
	generation   uint64
	catalog      *Catalog
	graph        *IngredientGraph
	greedy       *GreedyMatcher
	backtracking *BacktrackingMatcher
	matchers     map[string]matcher

	centralityMu sync.Mutex
	centrality   map[string]float64
	centralityAt time.Time
}

// Service 食譜推薦服務
type Service struct {
	opts    Options
	store   *Store
	cache   cache.Cache
	writeMu sync.Mutex
	mu      sync.RWMutex
	idx     *indices
	now     func() time.Time
}

// NewService 創建新的食譜推薦服務，快取可為 nil
func NewService(opts Options, c cache.Cache) *Service {
	s := &Service{
		opts:  opts,
		store: NewStore(),
		cache: c,
		now:   time.Now,
	}
	s.RebuildIndices()
	return s
}

// RebuildIndices 由目前的儲存內容重建圖與匹配器
func (s *Service) RebuildIndices() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.rebuildLocked()
}

// rebuildLocked 呼叫者需持有 writeMu
func (s *Service) rebuildLocked() {
	catalog := s.store.Snapshot()
	next := s.buildIndices(catalog)

	s.mu.Lock()
	if s.idx != nil {
		next.generation = s.idx.generation + 1
	}
	s.idx = next
	s.mu.Unlock()

	metrics.SetCatalogSize(catalog.RecipeCount(), catalog.IngredientCount(), len(catalog.Compatibilities()))
	common.LogDebug("匹配索引已重建",
		zap.Uint64("generation", next.generation),
		zap.Int("recipes", catalog.RecipeCount()),
		zap.Int("ingredients", catalog.IngredientCount()),
	)
}

func (s *Service) buildIndices(c *Catalog) *indices {
	g := NewIngredientGraph(c, GraphOptions{
		MinMatchScore:             s.opts.MinRecipeMatchScore,
		MinSubstitutionSimilarity: s.opts.MinSubstitutionSimilarity,
		MaxSubstitutionResults:    s.opts.MaxSubstitutionResults,
	})
	idx := &indices{
		catalog:      c,
		graph:        g,
		greedy:       NewGreedyMatcher(c, s.opts.MinRecipeMatchScore),
		backtracking: NewBacktrackingMatcher(c, s.opts.MinRecipeMatchScore, s.opts.MaxExplorations),
	}
	idx.matchers = map[string]matcher{
		AlgorithmGreedy:       idx.greedy,
		AlgorithmBacktracking: idx.backtracking,
		AlgorithmGraph:        &graphMatcher{graph: g},
	}
	return idx
}

// current 取得目前的索引
func (s *Service) current() *indices {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx
}

// Generation 目前索引版本
func (s *Service) Generation() uint64 {
	return s.current().generation
}

// AddIngredient 驗證並新增食材
func (s *Service) AddIngredient(ctx context.Context, ing Ingredient) (*Ingredient, error) {
	if err := ValidateStruct(&ing); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.store.AddIngredient(ing)
	s.rebuildLocked()

	common.LogInfo("食材已新增", zap.String("ingredient_id", ing.ID))
	stored, _ := s.store.GetIngredient(ing.ID)
	return stored, nil
}

// AddRecipe 驗證、補上預設值並新增食譜
func (s *Service) AddRecipe(ctx context.Context, r Recipe) (*Recipe, error) {
	applyRecipeDefaults(&r)
	if err := ValidateStruct(&r); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.store.AddRecipe(r)
	s.rebuildLocked()

	common.LogInfo("食譜已新增", zap.String("recipe_id", r.ID))
	stored, _ := s.store.GetRecipe(r.ID)
	return stored, nil
}

// AddCompatibility 驗證並新增搭配關係
func (s *Service) AddCompatibility(ctx context.Context, comp IngredientCompatibility) error {
	if err := ValidateStruct(&comp); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.store.AddCompatibility(comp)
	s.rebuildLocked()
	return nil
}

// BulkLoad 一次載入整個資料集，只重建一次索引
func (s *Service) BulkLoad(ctx context.Context, ds *Dataset) error {
	for i := range ds.Recipes {
		applyRecipeDefaults(&ds.Recipes[i])
	}
	if err := ValidateStruct(ds); err != nil {
		return common.ErrSeedLoad.WithErr(err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	for _, ing := range ds.Ingredients {
		s.store.AddIngredient(ing)
	}
	for _, r := range ds.Recipes {
		s.store.AddRecipe(r)
	}
	for _, comp := range ds.Compatibilities {
		s.store.AddCompatibility(comp)
	}
	s.rebuildLocked()

	common.LogInfo("資料集已載入",
		zap.Int("ingredients", len(ds.Ingredients)),
		zap.Int("recipes", len(ds.Recipes)),
		zap.Int("compatibilities", len(ds.Compatibilities)),
	)
	return nil
}

// applyRecipeDefaults 補上難度、總時間與複雜度
func applyRecipeDefaults(r *Recipe) {
	r.ID = strings.TrimSpace(r.ID)
	if r.Difficulty == "" {
		r.Difficulty = DifficultyIntermediate
	}
	if r.TotalTimeMinutes == 0 {
		r.TotalTimeMinutes = r.PrepTimeMinutes + r.CookTimeMinutes
	}
	if r.IngredientComplexityScore == nil {
		c := CalculateRecipeComplexity(r)
		r.IngredientComplexityScore = &c
	}
}

// SystemStats 系統統計
func (s *Service) SystemStats() map[string]interface{} {
	idx := s.current()
	stats := map[string]interface{}{
		"total_recipes":         idx.catalog.RecipeCount(),
		"total_ingredients":     idx.catalog.IngredientCount(),
		"total_compatibilities": len(idx.catalog.Compatibilities()),
		"graph_statistics":      idx.graph.Statistics(),
		"algorithm_availability": map[string]bool{
			AlgorithmGreedy:       idx.greedy != nil,
			AlgorithmBacktracking: idx.backtracking != nil,
			AlgorithmGraph:        idx.graph != nil,
		},
		"index_generation": idx.generation,
	}
	if s.cache != nil {
		stats["cache"] = s.cache.Stats()
	}
	return stats
}

// Algorithms 可用的演算法名稱
func (s *Service) Algorithms() []string {
	return []string{AlgorithmGraph, AlgorithmGreedy, AlgorithmBacktracking}
}

func (s *Service) maxResults() int {
	if s.opts.MaxRecipeResults <= 0 {
		return DefaultOptions().MaxRecipeResults
	}
	return s.opts.MaxRecipeResults
}

func (s *Service) elapsedMs(start time.Time) float64 {
	return float64(s.now().Sub(start)) / float64(time.Millisecond)
}

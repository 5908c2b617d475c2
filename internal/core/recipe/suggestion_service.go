package recipe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"flavorgraph/internal/core/cache"
	"flavorgraph/internal/infrastructure/metrics"
	"flavorgraph/internal/pkg/common"

	"go.uber.org/zap"
)

// Suggest 依可用食材推薦食譜
func (s *Service) Suggest(ctx context.Context, req *SuggestionRequest) (*SuggestionResponse, error) {
	if req == nil {
		return nil, common.ErrInvalidRequest.WithMessage("request body is required")
	}
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}

	idx := s.current()
	key := cache.Key("suggest", strconv.FormatUint(idx.generation, 10), buildSuggestionKey(req))
	if resp, ok := s.cachedSuggestion(ctx, key); ok {
		return resp, nil
	}

	start := s.now()
	q := idx.catalog.NewQuery(req)
	requested := strings.ToLower(strings.TrimSpace(req.AlgorithmPreference))
	algorithm, reason := s.selectAlgorithm(idx, requested, q)

	matches, insights, used, fallback, err := s.runStrategy(idx, algorithm, q)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []RecipeMatch{}
	}

	algorithmInsights := map[string]interface{}{
		"algorithm_used":   used,
		"selection_reason": reason,
	}
	for k, v := range insights {
		algorithmInsights[k] = v
	}
	if requested != "" {
		algorithmInsights["requested_algorithm"] = requested
	}
	if fallback != "" {
		algorithmInsights["fallback_reason"] = fallback
	}

	resp := &SuggestionResponse{
		Matches:                     matches,
		TotalRecipesAnalyzed:        idx.catalog.RecipeCount(),
		AlgorithmInsights:           algorithmInsights,
		IngredientGapAnalysis:       idx.gapAnalysis(q.Available, matches),
		SubstitutionRecommendations: idx.substitutionRecommendations(q.Available, matches),
	}
	resp.AnalysisTimeMs = s.elapsedMs(start)
	metrics.RecordSuggestion(used, s.now().Sub(start))

	common.LogInfo("推薦完成",
		zap.String("algorithm", used),
		zap.Int("matches", len(matches)),
		zap.Float64("analysis_time_ms", resp.AnalysisTimeMs),
	)

	s.storeSuggestion(ctx, key, resp)
	return resp, nil
}

// selectAlgorithm 指定的演算法優先，否則依目錄規模與可用食材數選擇
func (s *Service) selectAlgorithm(idx *indices, requested string, q *Query) (string, string) {
	if requested != "" {
		return requested, fmt.Sprintf("User requested %s algorithm", requested)
	}

	recipes := idx.catalog.RecipeCount()
	ingredients := q.RawAvailableCount

	if recipes > s.opts.GreedyRecipeThreshold || ingredients > s.opts.GreedyIngredientThreshold {
		return AlgorithmGreedy, fmt.Sprintf("Selected for speed with %d recipes and %d ingredients", recipes, ingredients)
	}
	if recipes < s.opts.BacktrackingRecipeThreshold && ingredients < s.opts.BacktrackingIngredientThreshold {
		return AlgorithmBacktracking, fmt.Sprintf("Selected for optimal results with small dataset (%d recipes)", recipes)
	}

	algorithm := s.opts.DefaultAlgorithm
	if _, ok := idx.matchers[algorithm]; !ok {
		algorithm = AlgorithmGraph
	}
	if algorithm == AlgorithmGraph {
		return algorithm, "Selected for relationship-based analysis"
	}
	return algorithm, "Default selection"
}

// runStrategy 執行策略，未知演算法或執行失敗時改用 greedy
func (s *Service) runStrategy(idx *indices, algorithm string, q *Query) ([]RecipeMatch, map[string]interface{}, string, string, error) {
	limit := s.maxResults()

	m, ok := idx.matchers[algorithm]
	if !ok {
		err := common.ErrInvalidAlgorithm.WithMessage("unknown algorithm %q", algorithm)
		common.LogStrategyFallback(algorithm, "unknown_algorithm", err)
		metrics.RecordFallback(algorithm, "unknown_algorithm")
		matches, insights, gerr := safeMatch(idx.greedy, q, limit)
		return matches, insights, AlgorithmGreedy, "unknown_algorithm", gerr
	}

	matches, insights, err := safeMatch(m, q, limit)
	if err == nil {
		return matches, insights, algorithm, "", nil
	}
	if algorithm == AlgorithmGreedy {
		return nil, nil, "", "", err
	}

	common.LogStrategyFallback(algorithm, "strategy_failure", err)
	metrics.RecordFallback(algorithm, "strategy_failure")
	matches, insights, err = safeMatch(idx.greedy, q, limit)
	return matches, insights, AlgorithmGreedy, "strategy_failure", err
}

// safeMatch 將策略中的 panic 轉為錯誤
func safeMatch(m matcher, q *Query, limit int) (matches []RecipeMatch, insights map[string]interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = common.ErrInternalError.WithErr(fmt.Errorf("matcher panic: %v", r))
		}
	}()
	matches, insights = m.Match(q, limit)
	return matches, insights, nil
}

func (s *Service) cachedSuggestion(ctx context.Context, key string) (*SuggestionResponse, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("讀取推薦快取失敗", zap.Error(err))
		}
		return nil, false
	}

	var resp SuggestionResponse
	if err := common.ParseJSONBytes(data, &resp); err != nil {
		common.LogWarn("推薦快取格式錯誤", zap.Error(err))
		return nil, false
	}
	resp.CacheHit = true
	return &resp, true
}

func (s *Service) storeSuggestion(ctx context.Context, key string, resp *SuggestionResponse) {
	if s.cache == nil {
		return
	}
	data, err := common.MarshalJSON(resp)
	if err != nil {
		common.LogWarn("推薦結果序列化失敗", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		common.LogWarn("寫入推薦快取失敗", zap.Error(err))
	}
}

// buildSuggestionKey 將請求正規化為快取鍵，列表排序後不受順序影響
func buildSuggestionKey(req *SuggestionRequest) string {
	sorted := func(values []string, lower bool) string {
		out := make([]string, 0, len(values))
		for _, v := range values {
			v = strings.TrimSpace(v)
			if lower {
				v = strings.ToLower(v)
			}
			out = append(out, v)
		}
		sort.Strings(out)
		return strings.Join(out, ";")
	}
	optInt := func(p *int) string {
		if p == nil {
			return ""
		}
		return strconv.Itoa(*p)
	}

	return strings.Join([]string{
		sorted(req.AvailableIngredients, false),
		sorted(req.DietaryPreferences, true),
		string(req.MealType),
		optInt(req.MaxMissingIngredients),
		optInt(req.MaxPrepTime),
		optInt(req.MaxCookTime),
		string(req.DifficultyLevel),
		strings.ToLower(strings.TrimSpace(req.CuisinePreference)),
		sorted(req.ExcludeIngredients, false),
		strings.ToLower(strings.TrimSpace(req.AlgorithmPreference)),
	}, "||")
}

// AnalyzeIngredients 只計算缺口分析與替代建議，只採用可用食材、飲食偏好與缺少上限
func (s *Service) AnalyzeIngredients(ctx context.Context, req *SuggestionRequest) (*IngredientAnalysisResponse, error) {
	if req == nil {
		return nil, common.ErrInvalidRequest.WithMessage("request body is required")
	}
	resp, err := s.Suggest(ctx, &SuggestionRequest{
		AvailableIngredients:  req.AvailableIngredients,
		DietaryPreferences:    req.DietaryPreferences,
		MaxMissingIngredients: req.MaxMissingIngredients,
	})
	if err != nil {
		return nil, err
	}
	return &IngredientAnalysisResponse{
		IngredientGapAnalysis:       resp.IngredientGapAnalysis,
		SubstitutionRecommendations: resp.SubstitutionRecommendations,
		AnalysisTimeMs:              resp.AnalysisTimeMs,
		TotalRecipesAnalyzed:        resp.TotalRecipesAnalyzed,
	}, nil
}

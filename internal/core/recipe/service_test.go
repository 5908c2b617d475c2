package recipe

import (
	"context"
	"testing"
	"time"

	"flavorgraph/internal/core/cache"
	"flavorgraph/internal/infrastructure/config"
	"flavorgraph/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panicMatcher struct{}

func (panicMatcher) Match(*Query, int) ([]RecipeMatch, map[string]interface{}) {
	panic("boom")
}

func TestSuggestAllStrategiesAgreeOnMissing(t *testing.T) {
	s := newLoadedService(t, tomatoPastaDataset())

	for _, algorithm := range []string{AlgorithmGraph, AlgorithmGreedy, AlgorithmBacktracking} {
		t.Run(algorithm, func(t *testing.T) {
			resp, err := s.Suggest(context.Background(), &SuggestionRequest{
				AvailableIngredients:  tomatoPastaAvailable(),
				MaxMissingIngredients: intPtr(1),
				AlgorithmPreference:   algorithm,
			})
			require.NoError(t, err)
			require.Len(t, resp.Matches, 1)

			got := resp.Matches[0]
			assert.Equal(t, "classic_tomato_pasta", got.Recipe.ID)
			assert.Equal(t, []string{"onion"}, got.MissingIngredients)
			assert.Greater(t, got.MatchScore, 0.0)
			assert.LessOrEqual(t, got.MatchScore, 1.0)
			assert.GreaterOrEqual(t, got.ConfidenceScore, 0.0)
			assert.LessOrEqual(t, got.ConfidenceScore, 1.0)

			assert.Equal(t, algorithm, resp.AlgorithmInsights["algorithm_used"])
			assert.Equal(t, "User requested "+algorithm+" algorithm", resp.AlgorithmInsights["selection_reason"])
			assert.Equal(t, 1, resp.TotalRecipesAnalyzed)
			assert.False(t, resp.CacheHit)
		})
	}
}

func TestSuggestDropsUnknownNames(t *testing.T) {
	s := newLoadedService(t, tomatoPastaDataset())

	resp, err := s.Suggest(context.Background(), &SuggestionRequest{
		AvailableIngredients: append(tomatoPastaAvailable(), "dragonfruit", "  "),
		AlgorithmPreference:  AlgorithmGreedy,
	})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	assert.NotContains(t, resp.Matches[0].AvailableIngredients, "dragonfruit")
}

func TestSuggestResolvesNamesAndAliases(t *testing.T) {
	ds := tomatoPastaDataset()
	ds.Ingredients[0].Aliases = []string{"Spaghetti"}
	s := newLoadedService(t, ds)

	resp, err := s.Suggest(context.Background(), &SuggestionRequest{
		AvailableIngredients: []string{"spaghetti", "TOMATO", "Garlic", "olive oil"},
		AlgorithmPreference:  AlgorithmBacktracking,
	})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, []string{"pasta", "tomato", "garlic", "olive_oil"}, resp.Matches[0].AvailableIngredients)
}

func TestSuggestEmptyStoreBacktracking(t *testing.T) {
	s := NewService(DefaultOptions(), nil)

	resp, err := s.Suggest(context.Background(), &SuggestionRequest{
		AvailableIngredients: []string{"tomato"},
		AlgorithmPreference:  AlgorithmBacktracking,
	})
	require.NoError(t, err)
	assert.NotNil(t, resp.Matches)
	assert.Empty(t, resp.Matches)
	assert.Zero(t, resp.TotalRecipesAnalyzed)
	assert.Nil(t, resp.IngredientGapAnalysis.CoverageAnalysis)
	assert.Equal(t, 0, resp.IngredientGapAnalysis.TotalUniqueMissing)
}

func TestSuggestUnknownAlgorithmFallsBack(t *testing.T) {
	s := newLoadedService(t, tomatoPastaDataset())

	resp, err := s.Suggest(context.Background(), &SuggestionRequest{
		AvailableIngredients: tomatoPastaAvailable(),
		AlgorithmPreference:  "Quantum",
	})
	require.NoError(t, err)
	assert.Equal(t, AlgorithmGreedy, resp.AlgorithmInsights["algorithm_used"])
	assert.Equal(t, "unknown_algorithm", resp.AlgorithmInsights["fallback_reason"])
	assert.Equal(t, "quantum", resp.AlgorithmInsights["requested_algorithm"])
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, AlgorithmGreedy, resp.Matches[0].AlgorithmUsed)
}

func TestSuggestPanickingStrategyFallsBack(t *testing.T) {
	s := newLoadedService(t, tomatoPastaDataset())
	s.current().matchers[AlgorithmGraph] = panicMatcher{}

	resp, err := s.Suggest(context.Background(), &SuggestionRequest{
		AvailableIngredients: tomatoPastaAvailable(),
		AlgorithmPreference:  AlgorithmGraph,
	})
	require.NoError(t, err)
	assert.Equal(t, AlgorithmGreedy, resp.AlgorithmInsights["algorithm_used"])
	assert.Equal(t, "strategy_failure", resp.AlgorithmInsights["fallback_reason"])
	assert.Len(t, resp.Matches, 1)
}

func TestSuggestGreedyFailureIsReturned(t *testing.T) {
	s := newLoadedService(t, tomatoPastaDataset())
	s.current().matchers[AlgorithmGreedy] = panicMatcher{}

	_, err := s.Suggest(context.Background(), &SuggestionRequest{
		AvailableIngredients: tomatoPastaAvailable(),
		AlgorithmPreference:  AlgorithmGreedy,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInternalError)
}

func TestSuggestAutomaticSelection(t *testing.T) {
	opts := DefaultOptions()
	s := NewService(opts, nil)
	require.NoError(t, s.BulkLoad(context.Background(), tomatoPastaDataset()))

	resp, err := s.Suggest(context.Background(), &SuggestionRequest{AvailableIngredients: tomatoPastaAvailable()})
	require.NoError(t, err)
	assert.Equal(t, AlgorithmBacktracking, resp.AlgorithmInsights["algorithm_used"])
	assert.Equal(t, "Selected for optimal results with small dataset (1 recipes)", resp.AlgorithmInsights["selection_reason"])

	many := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		many = append(many, "tomato")
	}
	resp, err = s.Suggest(context.Background(), &SuggestionRequest{AvailableIngredients: many})
	require.NoError(t, err)
	assert.Equal(t, AlgorithmGreedy, resp.AlgorithmInsights["algorithm_used"])

	opts.BacktrackingRecipeThreshold = 0
	s = NewService(opts, nil)
	require.NoError(t, s.BulkLoad(context.Background(), tomatoPastaDataset()))
	resp, err = s.Suggest(context.Background(), &SuggestionRequest{AvailableIngredients: tomatoPastaAvailable()})
	require.NoError(t, err)
	assert.Equal(t, AlgorithmGraph, resp.AlgorithmInsights["algorithm_used"])
	assert.Equal(t, "Selected for relationship-based analysis", resp.AlgorithmInsights["selection_reason"])
}

func TestSuggestValidation(t *testing.T) {
	s := newLoadedService(t, tomatoPastaDataset())

	_, err := s.Suggest(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrInvalidRequest)

	_, err = s.Suggest(context.Background(), &SuggestionRequest{MealType: "brunch"})
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
	assert.Contains(t, err.Error(), "MealType")

	_, err = s.Suggest(context.Background(), &SuggestionRequest{MaxMissingIngredients: intPtr(-1)})
	assert.Error(t, err)
}

func TestSuggestCacheHitAndInvalidation(t *testing.T) {
	mgr := cache.NewManager(&config.Config{Cache: config.CacheConfig{
		Enabled: true,
		Backend: "memory",
		MaxSize: 10,
		TTL:     time.Minute,
	}})
	defer mgr.Close()

	s := NewService(DefaultOptions(), mgr)
	require.NoError(t, s.BulkLoad(context.Background(), tomatoPastaDataset()))
	req := &SuggestionRequest{AvailableIngredients: tomatoPastaAvailable(), AlgorithmPreference: AlgorithmGraph}

	first, err := s.Suggest(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	reordered := &SuggestionRequest{AvailableIngredients: []string{"basil", "olive_oil", "garlic", "tomato", "pasta"}, AlgorithmPreference: "GRAPH"}
	second, err := s.Suggest(context.Background(), reordered)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	require.Len(t, second.Matches, 1)
	assert.Equal(t, first.Matches[0].MatchScore, second.Matches[0].MatchScore)

	_, err = s.AddIngredient(context.Background(), ingredient("onion", "Onion", CategoryVegetable, FlavorProfile{Sweetness: 3}))
	require.NoError(t, err)

	third, err := s.Suggest(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, third.CacheHit)
}

func TestAddIngredientRoundTrip(t *testing.T) {
	s := NewService(DefaultOptions(), nil)
	ing := Ingredient{
		ID:                "saffron",
		Name:              "Saffron",
		Category:          CategorySpice,
		FlavorProfile:     FlavorProfile{Sweetness: 2, Bitterness: 3},
		DietaryTags:       []string{"vegan"},
		CommonSubstitutes: []string{"turmeric"},
		CostLevel:         intPtr(5),
		Aliases:           []string{"Crocus"},
		NutritionalInfo:   NutritionalInfo{CaloriesPer100g: floatPtr(310)},
	}

	stored, err := s.AddIngredient(context.Background(), ing)
	require.NoError(t, err)
	assert.Equal(t, &ing, stored)

	got, err := s.GetIngredient(context.Background(), "saffron")
	require.NoError(t, err)
	assert.Equal(t, &ing, got)

	got.Name = "mutated"
	again, err := s.GetIngredient(context.Background(), "saffron")
	require.NoError(t, err)
	assert.Equal(t, "Saffron", again.Name)

	_, err = s.GetIngredient(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrIngredientNotFound)
}

func TestAddIngredientValidation(t *testing.T) {
	s := NewService(DefaultOptions(), nil)

	_, err := s.AddIngredient(context.Background(), Ingredient{ID: "x", Name: "X", Category: "mineral"})
	assert.Error(t, err)

	_, err = s.AddIngredient(context.Background(), Ingredient{ID: "x", Name: "X", Category: CategorySpice, CostLevel: intPtr(9)})
	assert.Error(t, err)

	_, err = s.AddIngredient(context.Background(), Ingredient{Name: "X", Category: CategorySpice})
	assert.Error(t, err)
	assert.Zero(t, s.SystemStats()["total_ingredients"])
}

func TestAddRecipeAppliesDefaults(t *testing.T) {
	s := newLoadedService(t, tomatoPastaDataset())
	before := s.Generation()

	stored, err := s.AddRecipe(context.Background(), Recipe{
		ID:              " caprese ",
		Name:            "Caprese",
		PrepTimeMinutes: 10,
		Ingredients:     []RecipeIngredient{line("tomato", 200), line("basil", 5)},
	})
	require.NoError(t, err)
	assert.Equal(t, "caprese", stored.ID)
	assert.Equal(t, DifficultyIntermediate, stored.Difficulty)
	assert.Equal(t, 10, stored.TotalTimeMinutes)
	require.NotNil(t, stored.IngredientComplexityScore)
	assert.InDelta(t, 2.0/20*0.3, *stored.IngredientComplexityScore, 1e-9)
	assert.Greater(t, s.Generation(), before)

	got, err := s.GetRecipe(context.Background(), "caprese")
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	_, err = s.GetRecipe(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrRecipeNotFound)
}

func TestAddRecipeOverwriteKeepsOrder(t *testing.T) {
	s := newLoadedService(t, tomatoPastaDataset())
	_, err := s.AddRecipe(context.Background(), Recipe{ID: "second", Name: "Second", Ingredients: []RecipeIngredient{line("tomato", 1)}})
	require.NoError(t, err)
	_, err = s.AddRecipe(context.Background(), Recipe{ID: "classic_tomato_pasta", Name: "Renamed", Ingredients: []RecipeIngredient{line("pasta", 1)}})
	require.NoError(t, err)

	items, total, _ := s.ListRecipes(context.Background(), RecipeFilter{})
	require.Equal(t, 2, total)
	assert.Equal(t, "Renamed", items[0].Name)
	assert.Equal(t, "second", items[1].ID)
}

func TestAddCompatibility(t *testing.T) {
	s := newLoadedService(t, tomatoPastaDataset())

	require.NoError(t, s.AddCompatibility(context.Background(), IngredientCompatibility{
		Ingredient1ID:      "tomato",
		Ingredient2ID:      "basil",
		CompatibilityScore: 0.95,
		RelationshipType:   "complementary",
	}))
	assert.Equal(t, 1, s.SystemStats()["total_compatibilities"])

	err := s.AddCompatibility(context.Background(), IngredientCompatibility{Ingredient1ID: "tomato", Ingredient2ID: "basil", CompatibilityScore: 2})
	assert.Error(t, err)
}

func TestBulkLoadRejectsInvalidDataset(t *testing.T) {
	s := NewService(DefaultOptions(), nil)
	ds := tomatoPastaDataset()
	ds.Ingredients[1].Category = "rock"

	err := s.BulkLoad(context.Background(), ds)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSeedLoad)
	assert.Zero(t, s.SystemStats()["total_recipes"])
}

func TestListRecipesFilters(t *testing.T) {
	ds := tomatoPastaDataset()
	ds.Recipes = append(ds.Recipes,
		Recipe{ID: "pancakes", Name: "Pancakes", Cuisine: "American", MealTypes: []MealType{MealBreakfast}, PrepTimeMinutes: 40, DietaryTags: []string{"vegetarian"}, Ingredients: []RecipeIngredient{line("flour", 1)}},
		Recipe{ID: "salad", Name: "Salad", Cuisine: "italian", Difficulty: DifficultyBeginner, DietaryTags: []string{"vegan", "vegetarian"}, Ingredients: []RecipeIngredient{line("tomato", 1)}},
	)
	s := newLoadedService(t, ds)
	ctx := context.Background()

	items, total, _ := s.ListRecipes(ctx, RecipeFilter{Cuisine: "ITALIAN"})
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)

	_, total, _ = s.ListRecipes(ctx, RecipeFilter{MealType: MealBreakfast})
	assert.Equal(t, 1, total)

	_, total, _ = s.ListRecipes(ctx, RecipeFilter{MaxPrepTime: 30})
	assert.Equal(t, 2, total)

	items, total, _ = s.ListRecipes(ctx, RecipeFilter{DietaryTags: []string{"Vegan"}})
	require.Equal(t, 1, total)
	assert.Equal(t, "salad", items[0].ID)

	items, total, page := s.ListRecipes(ctx, RecipeFilter{Page: common.Page{Limit: 1, Offset: 1}})
	assert.Equal(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "pancakes", items[0].ID)
	assert.Equal(t, 1, page.Limit)
}

func TestListIngredientsFilters(t *testing.T) {
	ds := tomatoPastaDataset()
	ds.Ingredients[3].Aliases = []string{"EVOO"}
	s := newLoadedService(t, ds)
	ctx := context.Background()

	items, total, _ := s.ListIngredients(ctx, IngredientFilter{Category: CategoryVegetable})
	assert.Equal(t, 2, total)
	assert.Equal(t, "tomato", items[0].ID)

	items, total, _ = s.ListIngredients(ctx, IngredientFilter{Search: "evoo"})
	require.Equal(t, 1, total)
	assert.Equal(t, "olive_oil", items[0].ID)

	_, total, _ = s.ListIngredients(ctx, IngredientFilter{DietaryTags: []string{"vegan"}})
	assert.Equal(t, 5, total)
}

func TestIngredientSubstitutes(t *testing.T) {
	ds := tomatoPastaDataset()
	ds.Ingredients = append(ds.Ingredients,
		ingredient("cherry_tomato", "Cherry Tomato", CategoryVegetable, FlavorProfile{Sweetness: 5, Sourness: 5, Umami: 5}, "vegetarian", "vegan"),
	)
	s := newLoadedService(t, ds)

	resp, err := s.IngredientSubstitutes(context.Background(), "tomato", []string{"Cherry Tomato", "pasta"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Substitutes)
	assert.Equal(t, "cherry_tomato", resp.Substitutes[0].Ingredient.ID)
	assert.Equal(t, "Same category - good substitute", resp.Substitutes[0].SubstitutionNotes)
	assert.Equal(t, len(resp.Substitutes), resp.TotalSubstitutesFound)
	assert.Equal(t, "tomato", resp.OriginalIngredient.ID)

	_, err = s.IngredientSubstitutes(context.Background(), "unicorn", nil)
	assert.ErrorIs(t, err, common.ErrIngredientNotFound)
}

func TestSubstituteScoresStayWithinUnitRange(t *testing.T) {
	ds := tomatoPastaDataset()
	ds.Ingredients = append(ds.Ingredients,
		ingredient("butter", "Butter", CategoryFat, FlavorProfile{Sweetness: 2, Saltiness: 3}, "vegetarian"),
		ingredient("ghee", "Ghee", CategoryFat, FlavorProfile{Sweetness: 2, Saltiness: 3}, "vegetarian"),
	)
	s := newLoadedService(t, ds)

	resp, err := s.IngredientSubstitutes(context.Background(), "butter", []string{"ghee"})
	require.NoError(t, err)
	require.Len(t, resp.Substitutes, 1)
	assert.Equal(t, "ghee", resp.Substitutes[0].Ingredient.ID)
	assert.Equal(t, 1.0, resp.Substitutes[0].SimilarityScore)
}

func TestGapAnalysis(t *testing.T) {
	ds := tomatoPastaDataset()
	ds.Ingredients = append(ds.Ingredients,
		Ingredient{ID: "onion", Name: "Onion", Category: CategoryVegetable, FlavorProfile: FlavorProfile{Sweetness: 3, Umami: 2}, CostLevel: intPtr(1), DietaryTags: []string{"vegan"}},
	)
	ds.Recipes = append(ds.Recipes, Recipe{
		ID:          "onion_soup",
		Name:        "Onion Soup",
		Cuisine:     "French",
		MealTypes:   []MealType{MealLunch},
		Ingredients: []RecipeIngredient{line("onion", 500), line("olive_oil", 10)},
	})
	s := newLoadedService(t, ds)

	resp, err := s.Suggest(context.Background(), &SuggestionRequest{
		AvailableIngredients: []string{"pasta", "tomato", "garlic", "olive_oil"},
		AlgorithmPreference:  AlgorithmGreedy,
	})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 2)

	ga := resp.IngredientGapAnalysis
	assert.Equal(t, 1, ga.TotalUniqueMissing)
	require.Len(t, ga.MostCommonMissing, 1)
	assert.Equal(t, MissingFrequency{IngredientID: "onion", Frequency: 2, Name: "Onion"}, ga.MostCommonMissing[0])
	require.Len(t, ga.MissingByCategory[CategoryVegetable], 1)
	require.Len(t, ga.EssentialMissingIngredients, 1)
	assert.Equal(t, 1.0, ga.EssentialMissingIngredients[0].ImpactScore)

	require.Len(t, ga.ShoppingPriorityList, 1)
	sp := ga.ShoppingPriorityList[0]
	// 次數 1.0*0.4 + 成本 1.0*0.3 + 通用性 1.0*0.3
	assert.InDelta(t, 1.0, sp.PriorityScore, 1e-9)
	assert.Contains(t, sp.ImpactDescription, "Enables 2 additional recipes")

	require.NotNil(t, ga.CoverageAnalysis)
	assert.Equal(t, 2, ga.CoverageAnalysis.TotalSuggestedRecipes)
	assert.Equal(t, 2, ga.CoverageAnalysis.PartiallyCoveredRecipes)
	assert.InDelta(t, (0.8+0.5)/2*100, ga.CoverageAnalysis.AverageCoveragePercentage, 1e-9)
	assert.Equal(t, 1, ga.CoverageAnalysis.CoverageDistribution.Good)
	assert.Equal(t, 1, ga.CoverageAnalysis.CoverageDistribution.Moderate)

	require.NotEmpty(t, ga.Recommendation)
	assert.Equal(t, "Consider buying Onion - it would unlock 2 additional recipe options.", ga.Recommendation[0])
	assert.Contains(t, ga.Recommendation, "Consider stocking basic staples: Onion")
}

func TestSubstitutionRecommendations(t *testing.T) {
	ds := tomatoPastaDataset()
	ds.Ingredients = append(ds.Ingredients,
		Ingredient{ID: "onion", Name: "Onion", Category: CategoryVegetable, FlavorProfile: FlavorProfile{Sweetness: 3, Umami: 2}, DietaryTags: []string{"vegetarian", "vegan"}, CommonSubstitutes: []string{"shallot"}},
		ingredient("shallot", "Shallot", CategoryVegetable, FlavorProfile{Sweetness: 3, Umami: 2}, "vegetarian", "vegan"),
	)
	s := newLoadedService(t, ds)

	resp, err := s.Suggest(context.Background(), &SuggestionRequest{
		AvailableIngredients: append(tomatoPastaAvailable(), "shallot"),
		AlgorithmPreference:  AlgorithmGraph,
	})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	assert.Empty(t, resp.Matches[0].MissingIngredients)
	assert.Equal(t, []string{"onion"}, resp.Matches[0].SubstitutableIngredients)

	resp, err = s.Suggest(context.Background(), &SuggestionRequest{
		AvailableIngredients: append(tomatoPastaAvailable(), "shallot"),
		AlgorithmPreference:  AlgorithmGreedy,
	})
	require.NoError(t, err)
	require.Len(t, resp.SubstitutionRecommendations, 1)
	rec := resp.SubstitutionRecommendations[0]
	assert.Equal(t, IngredientRef{ID: "onion", Name: "Onion"}, rec.MissingIngredient)
	require.NotEmpty(t, rec.Substitutes)
	assert.Equal(t, "shallot", rec.Substitutes[0].ID)
	// 同類且風味相同的宣告替代品原始分數為 1.2
	assert.Equal(t, 1.0, rec.Substitutes[0].SimilarityScore)
	assert.LessOrEqual(t, len(rec.Substitutes), 3)
}

func TestAnalyzeIngredients(t *testing.T) {
	s := newLoadedService(t, tomatoPastaDataset())

	resp, err := s.AnalyzeIngredients(context.Background(), &SuggestionRequest{AvailableIngredients: tomatoPastaAvailable()})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalRecipesAnalyzed)
	assert.Equal(t, 1, resp.IngredientGapAnalysis.TotalUniqueMissing)
}

func TestAnalyzeGraph(t *testing.T) {
	ds := tomatoPastaDataset()
	ds.Compatibilities = []IngredientCompatibility{
		{Ingredient1ID: "pasta", Ingredient2ID: "tomato", CompatibilityScore: 0.9},
		{Ingredient1ID: "tomato", Ingredient2ID: "basil", CompatibilityScore: 0.95},
		{Ingredient1ID: "tomato", Ingredient2ID: "garlic", CompatibilityScore: 0.85},
	}
	s := newLoadedService(t, ds)

	now := time.Now()
	s.now = func() time.Time { return now }

	resp := s.AnalyzeGraph(context.Background(), []string{"Basil", "mystery"})
	require.NotEmpty(t, resp.IngredientCentrality)
	assert.Equal(t, "tomato", resp.IngredientCentrality[0].IngredientID)
	assert.InDelta(t, 0.5, resp.IngredientCentrality[0].Centrality, 1e-9)

	require.Contains(t, resp.AvailableIngredientsAnalysis, "Basil")
	assert.Equal(t, "basil", resp.AvailableIngredientsAnalysis["Basil"].IngredientID)
	assert.Equal(t, "low", resp.AvailableIngredientsAnalysis["Basil"].ImportanceRank)
	assert.NotContains(t, resp.AvailableIngredientsAnalysis, "mystery")
	assert.Equal(t, "tomato", resp.KeyMissingIngredients[0].IngredientID)
	assert.Equal(t, 6, resp.GraphStatistics["total_nodes"])

	// 存活時間內重用同一份結果
	first := s.centrality(s.current())
	assert.Equal(t, first, s.centrality(s.current()))
}

func TestImportanceRank(t *testing.T) {
	assert.Equal(t, "high", importanceRank(0.2))
	assert.Equal(t, "medium", importanceRank(0.07))
	assert.Equal(t, "low", importanceRank(0.05))
}

func TestSystemStats(t *testing.T) {
	s := newLoadedService(t, tomatoPastaDataset())

	stats := s.SystemStats()
	assert.Equal(t, 1, stats["total_recipes"])
	assert.Equal(t, 5, stats["total_ingredients"])
	assert.Equal(t, map[string]bool{AlgorithmGreedy: true, AlgorithmBacktracking: true, AlgorithmGraph: true}, stats["algorithm_availability"])
	assert.NotContains(t, stats, "cache")
	assert.Equal(t, []string{AlgorithmGraph, AlgorithmGreedy, AlgorithmBacktracking}, s.Algorithms())
}

func TestQuickAndPopularRecipesDefaults(t *testing.T) {
	s := newLoadedService(t, tomatoPastaDataset())
	ctx := context.Background()

	quick := s.QuickRecipes(ctx, []string{"Pasta", "tomato", "garlic", "olive oil"}, 0, 0)
	require.Len(t, quick, 1)
	assert.Equal(t, []string{"onion"}, quick[0].MissingIngredients)

	assert.NotNil(t, s.PopularRecipes(ctx, nil, 0))
	assert.Empty(t, s.PopularRecipes(ctx, nil, 0))
}

func TestBuildSuggestionKeyOrderInsensitive(t *testing.T) {
	a := buildSuggestionKey(&SuggestionRequest{AvailableIngredients: []string{"b", " a"}, DietaryPreferences: []string{"Vegan"}})
	b := buildSuggestionKey(&SuggestionRequest{AvailableIngredients: []string{"a", "b"}, DietaryPreferences: []string{"vegan"}})
	assert.Equal(t, a, b)

	c := buildSuggestionKey(&SuggestionRequest{AvailableIngredients: []string{"a", "b"}, MaxMissingIngredients: intPtr(0)})
	assert.NotEqual(t, b, c)
}

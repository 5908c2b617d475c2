package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"flavorgraph/internal/core/queue"
	"flavorgraph/internal/core/recipe"
	"flavorgraph/internal/infrastructure/config"
	"flavorgraph/internal/infrastructure/seed"
	"flavorgraph/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		App:         config.AppConfig{Env: "test", Version: "test"},
		Server:      config.ServerConfig{MaxBodyBytes: 1 << 20},
		API:         config.APIConfig{Prefix: "/api/v1"},
		Queue:       config.QueueConfig{Workers: 2, MaxSize: 10, Timeout: 5 * time.Second},
		CORS:        config.CORSConfig{Origins: []string{"*"}},
		Metrics:     config.MetricsConfig{Enabled: true, Path: "/metrics"},
		DedupWindow: time.Minute,
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := testConfig()

	ds, err := seed.Sample()
	require.NoError(t, err)
	svc := recipe.NewService(recipe.DefaultOptions(), nil)
	require.NoError(t, svc.BulkLoad(context.Background(), ds))

	q := queue.NewManager(cfg)
	t.Cleanup(q.Close)

	return SetupRouter(cfg, svc, q)
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, common.ParseJSONBytes(w.Body.Bytes(), v))
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	var health struct {
		Status string `json:"status"`
		Data   struct {
			Recipes     int `json:"recipes"`
			Ingredients int `json:"ingredients"`
		} `json:"data"`
		Algorithms map[string]bool        `json:"algorithms"`
		Queue      map[string]interface{} `json:"queue"`
	}
	decode(t, w, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 5, health.Data.Recipes)
	assert.Equal(t, 17, health.Data.Ingredients)
	assert.True(t, health.Algorithms[recipe.AlgorithmBacktracking])
	assert.EqualValues(t, 2, health.Queue["workers"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/live", "").Code)
}

func TestSuggestRecipes(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/recipes/suggest", `{
		"available_ingredients": ["spaghetti", "tomatoes", "garlic", "EVOO", "basil", "salt", "pepper", "onion"],
		"algorithm_preference": "greedy"
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp recipe.SuggestionResponse
	decode(t, w, &resp)
	require.NotEmpty(t, resp.Matches)
	ids := []string{}
	for _, m := range resp.Matches {
		ids = append(ids, m.Recipe.ID)
		assert.Equal(t, recipe.AlgorithmGreedy, m.AlgorithmUsed)
	}
	assert.Contains(t, ids, "pasta_tomato_001")
	assert.Equal(t, 5, resp.TotalRecipesAnalyzed)
}

func TestSuggestRecipesRejectsBadInput(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/recipes/suggest", `{"available_ingredients": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeInvalidRequest)

	w = do(r, http.MethodPost, "/api/v1/recipes/suggest", `{"available_ingredients": ["tomato"], "meal_type": "brunch"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MealType")
}

func TestAnalyzeIngredients(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/ingredients/analyze", `{"available_ingredients": ["tomato", "basil", "mozzarella"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp recipe.IngredientAnalysisResponse
	decode(t, w, &resp)
	assert.Equal(t, 5, resp.TotalRecipesAnalyzed)
	assert.NotNil(t, resp.IngredientGapAnalysis.CoverageAnalysis)
}

func TestListRecipes(t *testing.T) {
	r := newTestRouter(t)

	var list struct {
		Items  []recipe.Recipe `json:"items"`
		Total  int             `json:"total"`
		Limit  int             `json:"limit"`
		Offset int             `json:"offset"`
	}

	w := do(r, http.MethodGet, "/api/v1/recipes?cuisine=italian", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 20, list.Limit)

	w = do(r, http.MethodGet, "/api/v1/recipes?limit=1&offset=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Equal(t, 5, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "grilled_chicken_001", list.Items[0].ID)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/v1/recipes?limit=500", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/v1/recipes?meal_type=brunch", "").Code)
}

func TestQuickAndPopularRecipes(t *testing.T) {
	r := newTestRouter(t)

	var resp struct {
		MaxMinutes int                  `json:"max_minutes"`
		Matches    []recipe.RecipeMatch `json:"matches"`
		Total      int                  `json:"total"`
	}

	w := do(r, http.MethodGet, "/api/v1/recipes/quick?ingredients=tomato,mozzarella&ingredients=basil,olive%20oil&max_minutes=15", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &resp)
	assert.Equal(t, 15, resp.MaxMinutes)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "caprese_salad_001", resp.Matches[0].Recipe.ID)
	assert.Equal(t, []string{"salt_001", "black_pepper_001"}, resp.Matches[0].MissingIngredients)

	w = do(r, http.MethodGet, "/api/v1/recipes/quick", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, 30, resp.MaxMinutes)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/v1/recipes/quick?max_minutes=500", "").Code)

	w = do(r, http.MethodGet, "/api/v1/recipes/popular?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.LessOrEqual(t, resp.Total, 2)
}

func TestGetRecipe(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/recipes/pasta_tomato_001", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got recipe.Recipe
	decode(t, w, &got)
	assert.Equal(t, "Classic Tomato Pasta", got.Name)

	w = do(r, http.MethodGet, "/api/v1/recipes/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeRecipeNotFound)
}

func TestCreateRecipe(t *testing.T) {
	r := newTestRouter(t)

	body := `{
		"id": "bruschetta_001",
		"name": "Bruschetta",
		"meal_types": ["appetizer"],
		"prep_time_minutes": 10,
		"cook_time_minutes": 5,
		"ingredients": [
			{"ingredient_id": "tomato_001", "quantity": 2, "unit": "whole"},
			{"ingredient_id": "garlic_001", "quantity": 1, "unit": "clove"}
		]
	}`
	w := do(r, http.MethodPost, "/api/v1/recipes", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created recipe.Recipe
	decode(t, w, &created)
	assert.Equal(t, recipe.DifficultyIntermediate, created.Difficulty)
	assert.Equal(t, 15, created.TotalTimeMinutes)

	// 相同請求在時間窗內視為重複
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/api/v1/recipes", body).Code)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/recipes/bruschetta_001", "").Code)

	w = do(r, http.MethodPost, "/api/v1/recipes", `{"id": "x", "name": "X", "meal_types": ["brunch"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngredientEndpoints(t *testing.T) {
	r := newTestRouter(t)

	var list struct {
		Items []recipe.Ingredient `json:"items"`
		Total int                 `json:"total"`
	}
	w := do(r, http.MethodGet, "/api/v1/ingredients?category=herb", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Equal(t, 2, list.Total)

	w = do(r, http.MethodGet, "/api/v1/ingredients?search=cheese", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Equal(t, 2, list.Total)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/v1/ingredients?category=rock", "").Code)

	w = do(r, http.MethodGet, "/api/v1/ingredients/basil_001", "")
	require.Equal(t, http.StatusOK, w.Code)
	var basil recipe.Ingredient
	decode(t, w, &basil)
	assert.Equal(t, "Fresh Basil", basil.Name)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/ingredients/unobtainium", "").Code)
}

func TestIngredientSubstitutes(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/ingredients/tomato_001/substitutes?available=canned%20tomatoes,basil", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp recipe.SubstitutesResponse
	decode(t, w, &resp)
	require.NotNil(t, resp.OriginalIngredient)
	assert.Equal(t, "tomato_001", resp.OriginalIngredient.ID)
	assert.Equal(t, len(resp.Substitutes), resp.TotalSubstitutesFound)

	w = do(r, http.MethodGet, "/api/v1/ingredients/nope/substitutes", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeIngredientNotFound)
}

func TestCreateIngredientAndCompatibility(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/ingredients", `{"id": "shallot_001", "name": "Shallot", "category": "vegetable", "aliases": ["shallots"]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(r, http.MethodGet, "/api/v1/ingredients?search=shallot", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shallot_001")

	w = do(r, http.MethodPost, "/api/v1/ingredients", `{"id": "mystery", "name": "Mystery", "category": "rock"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/compatibilities", `{"ingredient1_id": "shallot_001", "ingredient2_id": "garlic_001", "compatibility_score": 0.8, "relationship_type": "complementary"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(r, http.MethodPost, "/api/v1/compatibilities", `{"ingredient1_id": "a", "ingredient2_id": "b", "compatibility_score": 2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/system/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]interface{}
	decode(t, w, &stats)
	assert.EqualValues(t, 18, stats["total_ingredients"])
	assert.EqualValues(t, 9, stats["total_compatibilities"])
	assert.NotNil(t, stats["queue"])
	assert.Len(t, stats["available_algorithms"], 3)
}

func TestAnalyzeGraph(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/graph/analyze", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodPost, "/api/v1/graph/analyze", `{"available_ingredients": ["garlic", "ghost pepper"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp recipe.GraphAnalysis
	decode(t, w, &resp)
	assert.NotEmpty(t, resp.IngredientCentrality)
	assert.Contains(t, resp.AvailableIngredientsAnalysis, "garlic")
	assert.NotContains(t, resp.AvailableIngredientsAnalysis, "ghost pepper")
	assert.EqualValues(t, 5, resp.GraphStatistics["recipe_nodes"])
}

func TestMetricsAndNoRoute(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "flavorgraph_queue_depth"))

	w = do(r, http.MethodGet, "/api/v1/nowhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeNotFound)
}

func TestCORSConfig(t *testing.T) {
	conf := corsConfig(config.CORSConfig{Origins: []string{"*"}})
	assert.True(t, conf.AllowAllOrigins)
	assert.False(t, conf.AllowCredentials)

	conf = corsConfig(config.CORSConfig{Origins: []string{" http://localhost:3000 ", ""}})
	assert.False(t, conf.AllowAllOrigins)
	assert.Equal(t, []string{"http://localhost:3000"}, conf.AllowOrigins)
	assert.True(t, conf.AllowCredentials)
}

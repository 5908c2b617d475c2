package api

import (
	"net/http"
	"strings"
	"time"

	"flavorgraph/internal/api/handlers/health"
	recipeHandler "flavorgraph/internal/api/handlers/recipe"
	"flavorgraph/internal/api/middleware"
	"flavorgraph/internal/core/queue"
	recipeService "flavorgraph/internal/core/recipe"
	"flavorgraph/internal/infrastructure/config"
	"flavorgraph/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// 請求體大小上限的預設值 (1MB)
const defaultMaxBodySize = 1 << 20

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc *recipeService.Service, queueManager *queue.Manager) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	maxBodySize := cfg.Server.MaxBodyBytes
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}

	router := gin.New()

	// 基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	router.Use(cors.New(corsConfig(cfg.CORS)))
	router.Use(middleware.BodySizeLimit(maxBodySize))

	healthHandler := health.NewHandler(cfg, svc, queueManager)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	if cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.Handler()))
	}

	prefix := cfg.API.Prefix
	if prefix == "" {
		prefix = "/api/v1"
	}

	h := recipeHandler.NewHandler(svc, queueManager)
	dedup := middleware.Deduplication(middleware.NewDeduplicator(cfg.DedupWindow))

	// API 路由組
	api := router.Group(prefix)
	api.Use(middleware.RateLimit(cfg.RateLimit))
	api.Use(middleware.Timeout(cfg.Queue.Timeout))
	{
		recipes := api.Group("/recipes")
		{
			recipes.POST("/suggest", h.SuggestRecipes)
			recipes.GET("", h.ListRecipes)
			recipes.GET("/quick", h.QuickRecipes)
			recipes.GET("/popular", h.PopularRecipes)
			recipes.GET("/:id", h.GetRecipe)
			recipes.POST("", dedup, h.CreateRecipe)
		}

		ingredients := api.Group("/ingredients")
		{
			ingredients.POST("/analyze", h.AnalyzeIngredients)
			ingredients.GET("", h.ListIngredients)
			ingredients.GET("/:id", h.GetIngredient)
			ingredients.GET("/:id/substitutes", h.IngredientSubstitutes)
			ingredients.POST("", dedup, h.CreateIngredient)
		}

		api.POST("/compatibilities", dedup, h.CreateCompatibility)
		api.POST("/graph/analyze", h.AnalyzeGraph)
		api.GET("/system/stats", h.SystemStats)
	}

	router.NoRoute(func(c *gin.Context) {
		common.WriteError(c, common.ErrNotFound.WithMessage("route %s %s not found", c.Request.Method, c.Request.URL.Path))
	})

	common.LogInfo("Router setup completed successfully",
		zap.String("api_prefix", prefix),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router
}

// corsConfig 依設定的來源建立 CORS 設定
func corsConfig(cc config.CORSConfig) cors.Config {
	conf := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}

	origins := make([]string, 0, len(cc.Origins))
	for _, o := range cc.Origins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		conf.AllowAllOrigins = true
		return conf
	}
	conf.AllowOrigins = origins
	conf.AllowCredentials = true
	return conf
}

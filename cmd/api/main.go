package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flavorgraph/internal/api"
	"flavorgraph/internal/core/cache"
	"flavorgraph/internal/core/queue"
	"flavorgraph/internal/core/recipe"
	"flavorgraph/internal/infrastructure/config"
	"flavorgraph/internal/infrastructure/seed"
	"flavorgraph/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("default_algorithm", cfg.Matching.DefaultAlgorithm),
		zap.Int("max_recipe_results", cfg.Matching.MaxRecipeResults),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	// 初始化快取，redis 無法連線時退回記憶體快取
	resultCache, err := cache.New(cfg)
	if err != nil {
		common.LogWarn("快取初始化失敗，改用記憶體快取", zap.Error(err))
		resultCache = cache.NewManager(cfg)
	}
	if resultCache != nil {
		defer resultCache.Close()
	}

	svc := recipe.NewService(recipe.OptionsFromConfig(cfg), resultCache)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), cfg.Seed.Timeout+5*time.Second)
	if err := seed.Apply(seedCtx, cfg, svc); err != nil {
		cancelSeed()
		common.LogFatal("Failed to load seed dataset", zap.Error(err))
	}
	cancelSeed()

	queueManager := queue.NewManager(cfg)
	defer queueManager.Close()

	router := api.SetupRouter(cfg, svc, queueManager)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.String("addr", srv.Addr),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}

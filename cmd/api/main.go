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

	"food-analyzer/internal/api"
	foodHandler "food-analyzer/internal/api/handlers/food"
	"food-analyzer/internal/core/ai/cache"
	"food-analyzer/internal/core/ai/image"
	"food-analyzer/internal/core/ai/service"
	foodService "food-analyzer/internal/core/food"
	"food-analyzer/internal/infrastructure/config"
	"food-analyzer/internal/infrastructure/storage"
	"food-analyzer/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir, cfg.LogMode); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	if err := run(cfg); err != nil {
		common.LogError("Server exited with error", zap.Error(err))
		common.Sync()
		os.Exit(1)
	}
	common.LogInfo("Server exited")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	common.LogInfo("載入設定",
		zap.String("provider", cfg.AI.Provider),
		zap.String("model", cfg.Model()),
		zap.String("openai_api_key", config.MaskAPIKey(cfg.OpenAI.APIKey)),
		zap.String("gemini_api_key", config.MaskAPIKey(cfg.Gemini.APIKey)),
		zap.String("database", cfg.Database.Path),
		zap.String("cache", cfg.Cache.Type),
	)

	// 初始化資料庫
	store, err := storage.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	// 初始化快取
	cacheStore, err := cache.NewStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	// 初始化模型提供者與 AI 服務
	p, err := service.NewProvider(ctx, cfg)
	if err != nil {
		if cacheStore != nil {
			cacheStore.Close()
		}
		return fmt.Errorf("failed to initialize ai provider: %w", err)
	}
	aiService := service.NewService(cfg, p, cacheStore)
	defer aiService.Close()

	router := api.SetupRouter(cfg, api.Dependencies{
		Food: foodHandler.Services{
			Analysis:    foodService.NewAnalysisService(aiService, store, &cfg.AI),
			Nutrition:   foodService.NewNutritionService(aiService, &cfg.AI),
			Substitutes: foodService.NewSubstituteService(aiService, &cfg.AI),
			Comparison:  foodService.NewComparisonService(aiService, store, &cfg.AI),
			Images:      image.NewProcessor(cfg.Image.MaxSizeBytes),
		},
		Database: store,
		AI:       aiService,
	})

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		common.LogInfo("啟動應用",
			zap.String("addr", srv.Addr),
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		common.LogInfo("Shutting down server...")

		// 設置關閉超時
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

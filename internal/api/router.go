package api

import (
	"time"

	foodHandler "food-analyzer/internal/api/handlers/food"
	"food-analyzer/internal/api/handlers/health"
	"food-analyzer/internal/api/middleware"
	"food-analyzer/internal/infrastructure/config"
	"food-analyzer/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由需要的已初始化元件
type Dependencies struct {
	Food     foodHandler.Services
	Database health.Pinger
	AI       health.QueueReporter
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	// CORS 設置：允許所有來源
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:   []string{"Content-Length", "X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg.App.Version, deps.Database, deps.AI)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/", foodHandler.Index(cfg.App.Version, cfg.Database.Path))

	// API 路由組
	api := router.Group("/api/v1")
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(middleware.NewDeduplicator(cfg.DedupWindow).Middleware())

	handler := foodHandler.NewHandler(deps.Food, cfg.App.Debug)
	{
		api.GET("/", foodHandler.Index(cfg.App.Version, cfg.Database.Path))
		api.POST("/analyze_food", handler.AnalyzeFood)
		api.GET("/nutrition/:dish_name", handler.GetNutrition)
		api.GET("/substitutes/:ingredient", handler.GetSubstitutes)
		api.GET("/compare", handler.CompareDishes)
		api.GET("/history", handler.GetHistory)
		api.GET("/analysis/:id", handler.GetAnalysis)
		api.GET("/analyses", handler.ListAnalyses)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
		zap.Duration("dedup_window", cfg.DedupWindow),
	)

	return router
}

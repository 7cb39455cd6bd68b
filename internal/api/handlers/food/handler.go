package food

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"food-analyzer/internal/core/ai/image"
	"food-analyzer/internal/core/extract"
	foodService "food-analyzer/internal/core/food"
	"food-analyzer/internal/infrastructure/storage"
	"food-analyzer/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// Services 處理器依賴的服務
type Services struct {
	Analysis    *foodService.AnalysisService
	Nutrition   *foodService.NutritionService
	Substitutes *foodService.SubstituteService
	Comparison  *foodService.ComparisonService
	Images      *image.Processor
}

// Handler 菜餚分析 API 處理器
type Handler struct {
	Services
	debug bool
}

// NewHandler 創建處理器；debug 為真時錯誤響應附帶詳細信息
func NewHandler(services Services, debug bool) *Handler {
	return &Handler{Services: services, debug: debug}
}

// Recipe 食譜
type Recipe struct {
	Ingredientes []string `json:"ingredientes"`
	Pasos        []string `json:"pasos"`
}

// AnalyzeResponse 圖片分析回應
type AnalyzeResponse struct {
	ID            int64    `json:"id"`
	NombrePlato   string   `json:"nombre_plato"`
	Receta        Recipe   `json:"receta"`
	DatosCuriosos []string `json:"datos_curiosos"`
}

// NutritionResponse 營養估算回應
type NutritionResponse struct {
	DishName  string                     `json:"dish_name"`
	Nutrition *extract.NutritionEstimate `json:"nutrition"`
	Source    string                     `json:"source"`
}

// SubstitutesResponse 替代食材回應
type SubstitutesResponse struct {
	Ingredient  string               `json:"ingredient"`
	Category    string               `json:"category"`
	Substitutes []extract.Substitute `json:"substitutes"`
	Source      string               `json:"source"`
}

// CompareResponse 菜餚比較回應
type CompareResponse struct {
	Dish1      foodService.StoredDish `json:"dish1"`
	Dish2      foodService.StoredDish `json:"dish2"`
	Comparison extract.DishComparison `json:"comparison"`
	Source     string                 `json:"source"`
}

// HistoryResponse 歷史記錄回應
type HistoryResponse struct {
	History []storage.AnalysisSummary `json:"history"`
	Count   int                       `json:"count"`
}

// AnalysesResponse 全部分析回應
type AnalysesResponse struct {
	Analyses []storage.Analysis `json:"analyses"`
	Count    int                `json:"count"`
}

// requestID 取得請求 ID；沒有時產生新的
func requestID(c *gin.Context) string {
	id := requestid.Get(c)
	if id == "" {
		id = common.GenerateUUID()
		c.Header("X-Request-ID", id)
	}
	return id
}

// AnalyzeFood 處理 POST /analyze_food
func (h *Handler) AnalyzeFood(c *gin.Context) {
	reqID := requestID(c)
	start := time.Now()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.respondError(c, reqID, common.ErrInvalidRequest.WithMessage("file is required").WithError(err))
		return
	}

	common.LogInfo("開始處理菜餚分析請求",
		zap.String("request_id", reqID),
		zap.String("client_ip", c.ClientIP()),
		zap.String("filename", fileHeader.Filename),
		zap.Int64("size", fileHeader.Size),
	)

	file, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, reqID, common.ErrInvalidRequest.WithMessage("cannot read file").WithError(err))
		return
	}
	defer file.Close()

	upload, err := h.Images.Read(file, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.respondError(c, reqID, err)
		return
	}

	analysis, err := h.Analysis.AnalyzeImage(c.Request.Context(), upload)
	if err != nil {
		h.respondError(c, reqID, err)
		return
	}

	common.LogInfo("菜餚分析請求完成",
		zap.String("request_id", reqID),
		zap.Int64("id", analysis.ID),
		zap.Duration("耗時", time.Since(start)),
	)

	c.JSON(http.StatusOK, AnalyzeResponse{
		ID:          analysis.ID,
		NombrePlato: analysis.DishName,
		Receta: Recipe{
			Ingredientes: analysis.Ingredients,
			Pasos:        analysis.RecipeSteps,
		},
		DatosCuriosos: analysis.FunFacts,
	})
}

// GetNutrition 處理 GET /nutrition/:dish_name
func (h *Handler) GetNutrition(c *gin.Context) {
	reqID := requestID(c)
	dish := strings.TrimSpace(c.Param("dish_name"))
	ingredients := splitList(c.Query("ingredients"))

	estimate, err := h.Nutrition.Estimate(c.Request.Context(), dish, ingredients)
	if err != nil {
		h.respondError(c, reqID, err)
		return
	}

	c.JSON(http.StatusOK, NutritionResponse{
		DishName:  dish,
		Nutrition: estimate,
		Source:    foodService.Source,
	})
}

// GetSubstitutes 處理 GET /substitutes/:ingredient
func (h *Handler) GetSubstitutes(c *gin.Context) {
	reqID := requestID(c)

	list, err := h.Substitutes.Find(c.Request.Context(), c.Param("ingredient"), c.Query("context"))
	if err != nil {
		h.respondError(c, reqID, err)
		return
	}

	c.JSON(http.StatusOK, SubstitutesResponse{
		Ingredient:  list.Ingredient,
		Category:    list.Category,
		Substitutes: list.Substitutes,
		Source:      foodService.Source,
	})
}

// CompareDishes 處理 GET /compare?analysis_id1=&analysis_id2=
func (h *Handler) CompareDishes(c *gin.Context) {
	reqID := requestID(c)

	id1, err := parseID(c.Query("analysis_id1"), "analysis_id1")
	if err != nil {
		h.respondError(c, reqID, err)
		return
	}
	id2, err := parseID(c.Query("analysis_id2"), "analysis_id2")
	if err != nil {
		h.respondError(c, reqID, err)
		return
	}

	result, err := h.Comparison.CompareStored(c.Request.Context(), id1, id2)
	if err != nil {
		h.respondError(c, reqID, err)
		return
	}

	c.JSON(http.StatusOK, CompareResponse{
		Dish1:      result.Dish1,
		Dish2:      result.Dish2,
		Comparison: result.Comparison,
		Source:     foodService.Source,
	})
}

// GetHistory 處理 GET /history?limit=
func (h *Handler) GetHistory(c *gin.Context) {
	reqID := requestID(c)

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.respondError(c, reqID, common.NewValidationError("limit must be a positive integer"))
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	history, err := h.Analysis.History(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, reqID, err)
		return
	}

	c.JSON(http.StatusOK, HistoryResponse{History: history, Count: len(history)})
}

// GetAnalysis 處理 GET /analysis/:id
func (h *Handler) GetAnalysis(c *gin.Context) {
	reqID := requestID(c)

	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		h.respondError(c, reqID, err)
		return
	}

	analysis, err := h.Analysis.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, reqID, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// ListAnalyses 處理 GET /analyses
func (h *Handler) ListAnalyses(c *gin.Context) {
	reqID := requestID(c)

	analyses, err := h.Analysis.All(c.Request.Context())
	if err != nil {
		h.respondError(c, reqID, err)
		return
	}

	c.JSON(http.StatusOK, AnalysesResponse{Analyses: analyses, Count: len(analyses)})
}

// Index 處理 GET /，回傳服務說明
func Index(version, database string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":     "Food Analyzer API",
			"version":     version,
			"description": "Análisis de imágenes de comida con modelos generativos y base de datos SQLite",
			"endpoints": gin.H{
				"POST /api/v1/analyze_food":                        "Analiza una imagen de comida y la guarda en BD",
				"GET /api/v1/nutrition/{dish_name}":                "Calcula información nutricional",
				"GET /api/v1/substitutes/{ingredient}":             "Sugiere sustitutos para un ingrediente",
				"GET /api/v1/compare?analysis_id1=X&analysis_id2=Y": "Compara dos platos guardados en BD",
				"GET /api/v1/history":                              "Obtiene historial de análisis guardados",
				"GET /api/v1/analysis/{id}":                        "Obtiene un análisis específico por ID",
				"GET /api/v1/analyses":                             "Obtiene todos los análisis guardados",
			},
			"database": database,
		})
	}
}

// parseID 解析正整數 ID
func parseID(raw, name string) (int64, error) {
	if raw == "" {
		return 0, common.NewValidationError(name + " is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, common.NewValidationError(name + " must be a positive integer")
	}
	return id, nil
}

// splitList 解析以逗號分隔的清單
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

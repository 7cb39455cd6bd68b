package food

import (
	"context"
	"fmt"
	"strings"

	"food-analyzer/internal/core/ai/image"
	"food-analyzer/internal/core/ai/provider"
	"food-analyzer/internal/core/extract"
	"food-analyzer/internal/infrastructure/config"
	"food-analyzer/internal/infrastructure/storage"
	"food-analyzer/internal/pkg/common"

	"go.uber.org/zap"
)

// AnalysisService 菜餚圖片分析
type AnalysisService struct {
	invoker
	store     AnalysisStore
	maxTokens int
}

// NewAnalysisService 創建菜餚分析服務
func NewAnalysisService(gen Generator, store AnalysisStore, cfg *config.AIConfig) *AnalysisService {
	return &AnalysisService{
		invoker:   newInvoker(gen, cfg),
		store:     store,
		maxTokens: cfg.AnalysisMaxTokens,
	}
}

// AnalyzeImage 辨識圖片中的菜餚並保存結果
func (s *AnalysisService) AnalyzeImage(ctx context.Context, upload *image.Upload) (*storage.Analysis, error) {
	common.LogInfo("開始分析菜餚圖片",
		zap.String("mime", upload.Image.MIMEType),
		zap.Int("size", upload.Size),
	)

	req := &provider.Request{
		System:    analysisSystem,
		Prompt:    buildAnalysisPrompt(),
		Image:     upload.Image,
		MaxTokens: s.maxTokens,
	}

	dish, err := generate(ctx, s.invoker, req, parseDishAnalysis)
	if err != nil {
		return nil, err
	}

	analysis := &storage.Analysis{
		DishName:    dish.DishName,
		Ingredients: dish.Ingredients,
		RecipeSteps: dish.RecipeSteps,
		FunFacts:    dish.FunFacts,
		ImageHash:   upload.Hash,
	}
	if _, err := s.store.SaveAnalysis(ctx, analysis); err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}

	common.LogInfo("菜餚分析完成",
		zap.Int64("id", analysis.ID),
		zap.String("dish_name", analysis.DishName),
		zap.Int("ingredients", len(analysis.Ingredients)),
	)
	return analysis, nil
}

// parseDishAnalysis 解析菜餚分析；空白的菜名視為欄位無效，以便重新調用
func parseDishAnalysis(raw string) (extract.DishAnalysis, error) {
	dish, err := extract.ExtractDishAnalysis(raw)
	if err != nil {
		return dish, err
	}
	if strings.TrimSpace(dish.DishName) == "" {
		return extract.DishAnalysis{}, &extract.ExtractionError{
			Kind:      extract.SchemaMismatch,
			Schema:    extract.KindDishAnalysis,
			Candidate: strings.TrimSpace(raw),
			Issues:    []extract.FieldIssue{{Field: "dish_name", Issue: extract.IssueInvalid, Detail: "empty"}},
		}
	}
	return dish, nil
}

// Get 取得已保存的分析
func (s *AnalysisService) Get(ctx context.Context, id int64) (*storage.Analysis, error) {
	return s.store.GetAnalysis(ctx, id)
}

// History 最近的分析，由新到舊
func (s *AnalysisService) History(ctx context.Context, limit int) ([]storage.AnalysisSummary, error) {
	return s.store.ListAnalyses(ctx, limit)
}

// All 所有已保存的分析
func (s *AnalysisService) All(ctx context.Context) ([]storage.Analysis, error) {
	return s.store.AllAnalyses(ctx)
}

package food

import (
	"context"
	"strings"

	"food-analyzer/internal/core/ai/provider"
	"food-analyzer/internal/core/extract"
	"food-analyzer/internal/infrastructure/config"
	"food-analyzer/internal/pkg/common"

	"go.uber.org/zap"
)

// NutritionService 營養估算
type NutritionService struct {
	invoker
	maxTokens int
}

// NewNutritionService 創建營養估算服務
func NewNutritionService(gen Generator, cfg *config.AIConfig) *NutritionService {
	return &NutritionService{
		invoker:   newInvoker(gen, cfg),
		maxTokens: cfg.NutritionTokens,
	}
}

// Estimate 估算一份菜餚的營養；未提供食材時以 "ingredientes estándar" 代替
func (s *NutritionService) Estimate(ctx context.Context, dish string, ingredients []string) (*extract.NutritionEstimate, error) {
	dish = strings.TrimSpace(dish)
	if dish == "" {
		return nil, common.NewValidationError("dish name is required")
	}
	ingredients = cleanList(ingredients)

	common.LogDebug("估算營養", zap.String("dish", dish), zap.Strings("ingredients", ingredients))

	req := &provider.Request{
		System:    nutritionSystem,
		Prompt:    buildNutritionPrompt(dish, ingredients),
		MaxTokens: s.maxTokens,
	}

	estimate, err := generate(ctx, s.invoker, req, func(raw string) (extract.NutritionEstimate, error) {
		return extract.ExtractNutritionEstimate(raw)
	})
	if err != nil {
		return nil, err
	}
	return &estimate, nil
}

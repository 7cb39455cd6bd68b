package food

import (
	"context"
	"strings"

	"food-analyzer/internal/core/ai/provider"
	"food-analyzer/internal/core/extract"
	"food-analyzer/internal/infrastructure/config"
	"food-analyzer/internal/pkg/common"
)

// 模型未提供類別時的預設值
const defaultCategory = "general"

// SubstituteService 替代食材建議
type SubstituteService struct {
	invoker
	maxTokens int
}

// NewSubstituteService 創建替代食材服務
func NewSubstituteService(gen Generator, cfg *config.AIConfig) *SubstituteService {
	return &SubstituteService{
		invoker:   newInvoker(gen, cfg),
		maxTokens: cfg.SubstituteTokens,
	}
}

// Find 依情境（飲食限制、料理風格等，可為空）建議替代食材
func (s *SubstituteService) Find(ctx context.Context, ingredient, usage string) (*extract.SubstituteList, error) {
	ingredient = strings.TrimSpace(ingredient)
	if ingredient == "" {
		return nil, common.NewValidationError("ingredient is required")
	}

	req := &provider.Request{
		System:    substituteSystem,
		Prompt:    buildSubstitutePrompt(ingredient, strings.TrimSpace(usage)),
		MaxTokens: s.maxTokens,
	}

	list, err := generate(ctx, s.invoker, req, func(raw string) (extract.SubstituteList, error) {
		return extract.ExtractSubstituteList(raw,
			extract.WithDefault("category", defaultCategory),
			extract.WithDefault("ingredient", ingredient),
		)
	})
	if err != nil {
		return nil, err
	}
	return &list, nil
}

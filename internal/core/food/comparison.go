package food

import (
	"context"
	"fmt"
	"strings"

	"food-analyzer/internal/core/ai/provider"
	"food-analyzer/internal/core/extract"
	"food-analyzer/internal/infrastructure/config"
	"food-analyzer/internal/pkg/common"

	"go.uber.org/zap"
)

// StoredDish 比較結果中引用的已保存菜餚
type StoredDish struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// StoredComparison 兩筆已保存分析的比較
type StoredComparison struct {
	Dish1      StoredDish             `json:"dish1"`
	Dish2      StoredDish             `json:"dish2"`
	Comparison extract.DishComparison `json:"comparison"`
}

// ComparisonService 菜餚比較
type ComparisonService struct {
	invoker
	store     AnalysisStore
	maxTokens int
}

// NewComparisonService 創建菜餚比較服務
func NewComparisonService(gen Generator, store AnalysisStore, cfg *config.AIConfig) *ComparisonService {
	return &ComparisonService{
		invoker:   newInvoker(gen, cfg),
		store:     store,
		maxTokens: cfg.ComparisonTokens,
	}
}

// CompareStored 比較兩筆已保存的分析；任一筆不存在時回傳 storage.ErrNotFound
func (s *ComparisonService) CompareStored(ctx context.Context, id1, id2 int64) (*StoredComparison, error) {
	first, err := s.store.GetAnalysis(ctx, id1)
	if err != nil {
		return nil, fmt.Errorf("analysis %d: %w", id1, err)
	}
	second, err := s.store.GetAnalysis(ctx, id2)
	if err != nil {
		return nil, fmt.Errorf("analysis %d: %w", id2, err)
	}

	comparison, err := s.Compare(ctx,
		Dish{Name: first.DishName, Ingredients: first.Ingredients},
		Dish{Name: second.DishName, Ingredients: second.Ingredients},
	)
	if err != nil {
		return nil, err
	}

	return &StoredComparison{
		Dish1:      StoredDish{ID: first.ID, Name: first.DishName},
		Dish2:      StoredDish{ID: second.ID, Name: second.DishName},
		Comparison: *comparison,
	}, nil
}

// Compare 比較兩道菜
func (s *ComparisonService) Compare(ctx context.Context, a, b Dish) (*extract.DishComparison, error) {
	a.Name, b.Name = strings.TrimSpace(a.Name), strings.TrimSpace(b.Name)
	if a.Name == "" || b.Name == "" {
		return nil, common.NewValidationError("both dish names are required")
	}
	a.Ingredients, b.Ingredients = cleanList(a.Ingredients), cleanList(b.Ingredients)

	common.LogDebug("比較菜餚", zap.String("dish1", a.Name), zap.String("dish2", b.Name))

	req := &provider.Request{
		System:    comparisonSystem,
		Prompt:    buildComparisonPrompt(a, b),
		MaxTokens: s.maxTokens,
	}

	comparison, err := generate(ctx, s.invoker, req, func(raw string) (extract.DishComparison, error) {
		return extract.ExtractDishComparison(raw)
	})
	if err != nil {
		return nil, err
	}
	return &comparison, nil
}

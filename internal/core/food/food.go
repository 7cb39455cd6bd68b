// Package food 以模型回應建立菜餚分析、營養估算、替代食材與菜餚比較
package food

import (
	"context"
	"strings"

	"food-analyzer/internal/core/ai/provider"
	"food-analyzer/internal/core/extract"
	"food-analyzer/internal/infrastructure/config"
	"food-analyzer/internal/infrastructure/storage"
	"food-analyzer/internal/pkg/common"

	"go.uber.org/zap"
)

// Source 回應中標示資料來源
const Source = "agent"

// Generator 模型調用；由 ai/service.Service 實作
type Generator interface {
	Generate(ctx context.Context, req *provider.Request) (*provider.Response, error)
	Forget(ctx context.Context, req *provider.Request)
}

// AnalysisStore 分析結果的保存
type AnalysisStore interface {
	SaveAnalysis(ctx context.Context, a *storage.Analysis) (int64, error)
	GetAnalysis(ctx context.Context, id int64) (*storage.Analysis, error)
	ListAnalyses(ctx context.Context, limit int) ([]storage.AnalysisSummary, error)
	AllAnalyses(ctx context.Context) ([]storage.Analysis, error)
}

// Dish 用於比較的菜名與食材
type Dish struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

// invoker 各服務共用的模型調用與重試
type invoker struct {
	gen         Generator
	retries     int
	temperature float64
}

func newInvoker(gen Generator, cfg *config.AIConfig) invoker {
	return invoker{
		gen:         gen,
		retries:     cfg.ExtractionRetries,
		temperature: cfg.Temperature,
	}
}

// generate 調用模型並解析回應。解析失敗時丟棄快取中的回應，
// 附上失敗原因重新調用，最多 retries 次，最後回傳最後一次的 ExtractionError。
func generate[T extract.Record](ctx context.Context, inv invoker, req *provider.Request, parse func(string) (T, error)) (T, error) {
	var zero T
	if req.Temperature == 0 {
		req.Temperature = inv.temperature
	}

	attempt := req
	for i := 0; ; i++ {
		resp, err := inv.gen.Generate(ctx, attempt)
		if err != nil {
			return zero, err
		}

		record, err := parse(resp.Content)
		if err == nil {
			if i > 0 {
				common.LogInfo("重新調用後解析成功", zap.Int("attempt", i+1))
			}
			return record, nil
		}

		xerr, ok := extract.AsExtractionError(err)
		if !ok {
			return zero, err
		}

		common.LogWarn("模型回應解析失敗",
			zap.String("schema", xerr.Schema.String()),
			zap.String("kind", xerr.Kind.String()),
			zap.String("tier", xerr.Tier.String()),
			zap.Int("attempt", i+1),
			zap.Bool("cache_hit", resp.CacheHit),
			zap.String("candidate", xerr.Snippet(200)),
			zap.Error(err),
		)

		inv.gen.Forget(ctx, attempt)
		if i >= inv.retries {
			return zero, err
		}

		retry := *req
		retry.Prompt = withCorrection(req.Prompt, xerr)
		retry.SkipCache = true
		attempt = &retry
	}
}

// cleanList 去除空白項目
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

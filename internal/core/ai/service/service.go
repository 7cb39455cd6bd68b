package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-analyzer/internal/core/ai/cache"
	"food-analyzer/internal/core/ai/gemini"
	"food-analyzer/internal/core/ai/openai"
	"food-analyzer/internal/core/ai/provider"
	"food-analyzer/internal/core/ai/queue"
	"food-analyzer/internal/infrastructure/config"
	"food-analyzer/internal/pkg/common"

	"go.uber.org/zap"
)

// Service AI 服務：快取、隊列與提供者的組合
type Service struct {
	provider provider.Provider
	cache    cache.Store
	queue    *queue.Manager
	timeout  time.Duration
}

// NewService 創建 AI 服務；store 可為 nil（停用快取）
func NewService(cfg *config.Config, p provider.Provider, store cache.Store) *Service {
	timeout := cfg.AI.Timeout
	if timeout <= 0 {
		timeout = p.GetTimeout()
	}

	return &Service{
		provider: p,
		cache:    store,
		queue:    queue.NewManager(p, cfg.Queue.Workers, cfg.Queue.MaxSize),
		timeout:  timeout,
	}
}

// NewProvider 依設定建立模型提供者
func NewProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	switch cfg.AI.Provider {
	case config.ProviderGemini:
		return gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.AI.Timeout,
		})
	case config.ProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			Timeout: cfg.AI.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}

// Generate 取得模型回應；先查快取，未命中時經由隊列呼叫提供者。
// 提供者或隊列失敗時回傳包裝 provider.ErrInvocation 的錯誤。
func (s *Service) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	key := cache.Key(s.provider.GetModel(), req)

	if s.cache != nil && !req.SkipCache {
		if content, err := s.cache.Get(ctx, key); err == nil {
			common.LogCacheHit("llm")
			return &provider.Response{
				Content:  content,
				Model:    s.provider.GetModel(),
				CacheHit: true,
			}, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			common.LogWarn("讀取快取失敗", zap.Error(err))
		} else {
			common.LogCacheMiss("llm")
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.queue.Submit(callCtx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrInvocation, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp.Content); err != nil {
			common.LogWarn("寫入快取失敗", zap.Error(err))
		}
	}

	return resp, nil
}

// Forget 移除請求對應的快取回應
func (s *Service) Forget(ctx context.Context, req *provider.Request) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.Key(s.provider.GetModel(), req)); err != nil {
		common.LogWarn("刪除快取失敗", zap.Error(err))
	}
}

// QueueStatus 獲取隊列狀態
func (s *Service) QueueStatus() *queue.Status {
	return s.queue.GetQueueStatus()
}

// Model 獲取模型名稱
func (s *Service) Model() string {
	return s.provider.GetModel()
}

// Close 停止隊列並關閉提供者與快取
func (s *Service) Close() error {
	s.queue.Close()

	var errs []error
	if err := s.provider.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

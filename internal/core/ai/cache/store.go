package cache

import (
	"context"
	"errors"
	"fmt"

	"food-analyzer/internal/core/ai/provider"
	"food-analyzer/internal/infrastructure/config"
	"food-analyzer/internal/pkg/common"
)

// ErrCacheMiss 快取中沒有對應的值
var ErrCacheMiss = errors.New("cache miss")

// Store 模型回應快取
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key 依模型、提示詞與圖片產生快取鍵
func Key(model string, req *provider.Request) string {
	prompt := common.HashString(req.System + "\x00" + req.Prompt)
	if req.Image == nil || len(req.Image.Data) == 0 {
		return fmt.Sprintf("text:%s:%s", model, prompt)
	}
	return fmt.Sprintf("multimodal:%s:%s:%s", model, prompt, common.HashBytes(req.Image.Data))
}

// NewStore 依設定建立快取；停用時回傳 nil
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}

	switch cfg.Cache.Type {
	case config.CacheRedis:
		return NewRedisStore(ctx, &cfg.Cache)
	default:
		return NewManager(&cfg.Cache), nil
	}
}

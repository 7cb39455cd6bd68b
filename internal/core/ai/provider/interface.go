package provider

import (
	"context"
	"errors"
	"time"
)

// ErrInvocation 模型調用失敗（逾時、配額、請求錯誤等），與解析錯誤區分
var ErrInvocation = errors.New("model invocation failed")

// Image 隨提示詞送出的圖片
type Image struct {
	Data     []byte
	MIMEType string
}

// Request 表示發送到 AI 提供者的請求
type Request struct {
	System      string  `json:"system,omitempty"`
	Prompt      string  `json:"prompt"`
	Image       *Image  `json:"-"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	// SkipCache 為真時不讀取快取（仍會寫入）
	SkipCache bool `json:"-"`
}

// Usage token 使用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response 表示從 AI 提供者收到的響應
type Response struct {
	Content  string `json:"content"`
	Model    string `json:"model"`
	Usage    Usage  `json:"usage"`
	CacheHit bool   `json:"cache_hit,omitempty"`
}

// Provider 定義 AI 提供者介面
type Provider interface {
	// Generate 生成 AI 響應
	Generate(ctx context.Context, req *Request) (*Response, error)

	// GetModel 獲取當前使用的模型名稱
	GetModel() string

	// GetTimeout 獲取請求超時時間
	GetTimeout() time.Duration

	// Close 關閉提供者連接
	Close() error
}

package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"food-analyzer/internal/core/ai/provider"
	"food-analyzer/internal/pkg/common"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Config Gemini 設定
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client 以 Google Gemini 實作 provider.Provider
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

var _ provider.Provider = (*Client)(nil)

// NewClient 創建 Gemini 客戶端
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, model: cfg.Model, timeout: cfg.Timeout}, nil
}

// Generate 呼叫 GenerateContent，圖片以 inline blob 送出
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Image != nil && len(req.Image.Data) > 0 {
		mime := req.Image.MIMEType
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{Data: req.Image.Data, MIMEType: mime},
		})
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}, buildConfig(req))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from Gemini")
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty content in Gemini response")
	}

	resp := &provider.Response{Content: text, Model: c.model}
	if result.UsageMetadata != nil {
		resp.Usage = provider.Usage{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}

	common.LogDebug("Gemini 回應完成",
		zap.String("model", c.model),
		zap.Int("input_tokens", resp.Usage.PromptTokens),
		zap.Int("output_tokens", resp.Usage.CompletionTokens),
	)

	return resp, nil
}

func buildConfig(req *provider.Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}
	return config
}

// GetModel 獲取模型名稱
func (c *Client) GetModel() string {
	return c.model
}

// GetTimeout 獲取請求超時時間
func (c *Client) GetTimeout() time.Duration {
	return c.timeout
}

// Close genai 客戶端無需釋放資源
func (c *Client) Close() error {
	return nil
}

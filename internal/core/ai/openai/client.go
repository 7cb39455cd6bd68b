package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"food-analyzer/internal/core/ai/provider"
	"food-analyzer/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Config OpenAI 相容端點設定
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client OpenAI 相容的 chat completions 客戶端（OpenAI、OpenRouter）
type Client struct {
	client  *resty.Client
	model   string
	timeout time.Duration
}

var _ provider.Provider = (*Client)(nil)

type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []common.Message `json:"messages"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage provider.Usage `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

// NewClient 創建新的客戶端
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Title", "Food Analyzer")

	return &Client{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Generate 發送 chat completions 請求，回傳第一個 choice 的內容
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := c.buildRequest(req)

	common.LogDebug("Sending request to chat completions",
		zap.String("model", c.model),
		zap.Bool("has_image", req.Image != nil),
		zap.Int("max_tokens", req.MaxTokens),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	sanitizedBody := sanitizeResponse(resp.Body())

	if resp.StatusCode() != http.StatusOK {
		common.LogError("AI service returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", c.model),
			zap.String("response", sanitizedBody),
		)
		return nil, fmt.Errorf("AI service error (status %d): %s", resp.StatusCode(), errorMessage(resp.Body(), sanitizedBody))
	}

	var result chatResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w (response: %s)", err, sanitizedBody)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	content := result.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("empty content in response (finish_reason: %s)", result.Choices[0].FinishReason)
	}

	model := result.Model
	if model == "" {
		model = c.model
	}

	return &provider.Response{
		Content: content,
		Model:   model,
		Usage:   result.Usage,
	}, nil
}

func (c *Client) buildRequest(req *provider.Request) chatRequest {
	var messages []common.Message
	if req.System != "" {
		messages = append(messages, common.Message{
			Role:    "system",
			Content: []common.Content{common.TextContent(req.System)},
		})
	}

	content := []common.Content{common.TextContent(req.Prompt)}
	if req.Image != nil && len(req.Image.Data) > 0 {
		content = append(content, common.ImageContent(dataURL(req.Image)))
	}
	messages = append(messages, common.Message{Role: "user", Content: content})

	body := chatRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature > 0 {
		t := req.Temperature
		body.Temperature = &t
	}
	return body
}

// dataURL 將圖片編碼為 data:<mime>;base64,<data>
func dataURL(img *provider.Image) string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(img.Data))
}

// errorMessage 盡量取出 API 錯誤訊息
func errorMessage(body []byte, fallback string) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return fallback
}

// sanitizeResponse 清理響應內容，移除所有圖片數據
func sanitizeResponse(body []byte) string {
	text := string(body)
	if strings.Contains(text, "data:image/") {
		return "[IMAGE_DATA_REMOVED]"
	}
	if len(body) > 100 && strings.Contains(text, "base64") {
		return "[BASE64_DATA_REMOVED]"
	}
	const maxLen = 1000
	if len(text) > maxLen {
		return strings.ToValidUTF8(text[:maxLen], "") + "..."
	}
	return text
}

// GetModel 獲取模型名稱
func (c *Client) GetModel() string {
	return c.model
}

// GetTimeout 獲取請求超時時間
func (c *Client) GetTimeout() time.Duration {
	return c.timeout
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

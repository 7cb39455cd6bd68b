package image

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"food-analyzer/internal/core/ai/provider"
	"food-analyzer/internal/pkg/common"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

var (
	// ErrEmptyImage 圖片內容為空
	ErrEmptyImage = errors.New("image data is empty")
	// ErrNotImage 內容不是圖片
	ErrNotImage = errors.New("file must be an image")
	// ErrTooLarge 圖片超過大小限制
	ErrTooLarge = errors.New("image exceeds maximum size")
)

// Upload 處理後的上傳圖片
type Upload struct {
	Image *provider.Image
	Hash  string
	Size  int
}

// Processor 圖片處理器
type Processor struct {
	maxSize int64
}

// NewProcessor 創建圖片處理器
func NewProcessor(maxSize int64) *Processor {
	return &Processor{
		maxSize: maxSize,
	}
}

// Read 讀取上傳內容，檢查大小並以內容判斷 MIME 類型。
// declared 為客戶端宣告的 Content-Type，只在內容無法判斷時作為參考。
func (p *Processor) Read(r io.Reader, declared string) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return p.Process(data, declared)
}

// Process 驗證圖片位元組並建立送給模型的圖片
func (p *Processor) Process(data []byte, declared string) (*Upload, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if int64(len(data)) > p.maxSize {
		return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, p.maxSize)
	}

	mime := detectMIME(data, declared)
	if !strings.HasPrefix(mime, "image/") {
		common.LogWarn("上傳內容不是圖片",
			zap.String("detected", mime),
			zap.String("declared", declared),
		)
		return nil, ErrNotImage
	}

	return &Upload{
		Image: &provider.Image{Data: data, MIMEType: mime},
		Hash:  common.HashBytes(data),
		Size:  len(data),
	}, nil
}

// detectMIME 以內容偵測為主；偵測不到時退回宣告的類型
func detectMIME(data []byte, declared string) string {
	detected := mimetype.Detect(data)
	mime := detected.String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if mime != "application/octet-stream" {
		return mime
	}

	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared == "" {
		return mime
	}
	return declared
}

package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-analyzer/internal/pkg/common"
)

// Deduplicator 記錄最近的 POST 請求指紋，拒絕視窗內的重複請求
type Deduplicator struct {
	mu       sync.Mutex
	requests map[string]time.Time
	window   time.Duration
	now      func() time.Time
}

// NewDeduplicator 創建請求去重器
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = time.Second
	}
	return &Deduplicator{
		requests: make(map[string]time.Time),
		window:   window,
		now:      time.Now,
	}
}

// seen 記錄指紋；視窗內已出現過時回傳 true
func (d *Deduplicator) seen(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.requests[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.requests[fingerprint] = now

	// 順帶清理過期指紋
	for k, t := range d.requests {
		if now.Sub(t) > 10*d.window {
			delete(d.requests, k)
		}
	}
	return false
}

// Middleware 請求去重中間件，只處理 POST 請求
func (d *Deduplicator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost || c.Request.Body == nil {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			common.LogWarn("Failed to read request body", zap.Error(err))
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatusJSON(common.ErrRequestTooLarge.Status, common.ErrRequestTooLarge.Response(false))
				return
			}
			c.AbortWithStatusJSON(common.ErrInvalidRequest.Status, common.ErrInvalidRequest.Response(false))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		fingerprint := c.ClientIP() + ":" + c.Request.URL.Path + ":" + common.HashBytes(body)
		if d.seen(fingerprint) {
			common.LogWarn("Duplicate request rejected",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(common.ErrTooManyRequests.Status,
				common.ErrTooManyRequests.WithMessage("Request too frequent").Response(false))
			return
		}

		c.Next()
	}
}

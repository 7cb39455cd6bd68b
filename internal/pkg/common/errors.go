package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithError 以預定義錯誤為模板附加原始錯誤
func (e *CustomError) WithError(err error) *CustomError {
	return NewError(e.Code, e.Message, e.Status, err)
}

// WithMessage 以預定義錯誤為模板替換錯誤信息
func (e *CustomError) WithMessage(message string) *CustomError {
	return NewError(e.Code, message, e.Status, e.Err)
}

// Response 轉為 API 錯誤響應，debug 為真時附帶原始錯誤
func (e *CustomError) Response(debug bool) ErrorResponse {
	resp := ErrorResponse{Code: e.Code, Message: e.Message}
	if debug && e.Err != nil {
		resp.Details = e.Err.Error()
	}
	return resp
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest       = "INVALID_REQUEST"        // 400
	ErrCodeNotFound             = "NOT_FOUND"              // 404
	ErrCodeRequestTooLarge      = "REQUEST_TOO_LARGE"      // 413
	ErrCodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE" // 415
	ErrCodeTooManyRequests      = "TOO_MANY_REQUESTS"      // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError    = "INTERNAL_ERROR"    // 500
	ErrCodeExtractionFailed = "EXTRACTION_FAILED" // 502
	ErrCodeAIServiceError   = "AI_SERVICE_ERROR"  // 503
	ErrCodeGatewayTimeout   = "GATEWAY_TIMEOUT"   // 504
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest       = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound             = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrRequestTooLarge      = NewError(ErrCodeRequestTooLarge, "請求內容過大", http.StatusRequestEntityTooLarge, nil)
	ErrUnsupportedMediaType = NewError(ErrCodeUnsupportedMediaType, "File must be an image", http.StatusUnsupportedMediaType, nil)
	ErrTooManyRequests      = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError  = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrGatewayTimeout = NewError(ErrCodeGatewayTimeout, "網關超時", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrInvalidImageSize = NewError("INVALID_IMAGE_SIZE", "圖片大小超出限制", http.StatusRequestEntityTooLarge, nil)
	ErrExtractionFailed = NewError(ErrCodeExtractionFailed, "模型回應格式無效", http.StatusBadGateway, nil)
	ErrAIServiceError   = NewError(ErrCodeAIServiceError, "AI 服務錯誤", http.StatusServiceUnavailable, nil)
	ErrCacheFull        = NewError("CACHE_FULL", "緩存已滿", http.StatusServiceUnavailable, nil)
)

package food

import (
	"context"
	"errors"

	"food-analyzer/internal/core/ai/image"
	"food-analyzer/internal/core/ai/provider"
	"food-analyzer/internal/core/extract"
	"food-analyzer/internal/infrastructure/storage"
	"food-analyzer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// toCustomError 將服務層錯誤對應為 API 錯誤
func toCustomError(err error) *common.CustomError {
	var custom *common.CustomError
	if errors.As(err, &custom) {
		return custom
	}

	if xerr, ok := extract.AsExtractionError(err); ok {
		return common.ErrExtractionFailed.WithError(xerr)
	}

	switch {
	case common.IsValidationError(err):
		return common.ErrInvalidRequest.WithMessage(err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return common.ErrNotFound.WithMessage("Análisis no encontrado").WithError(err)
	case errors.Is(err, image.ErrNotImage):
		return common.ErrUnsupportedMediaType.WithError(err)
	case errors.Is(err, image.ErrTooLarge):
		return common.ErrInvalidImageSize.WithError(err)
	case errors.Is(err, image.ErrEmptyImage):
		return common.ErrInvalidRequest.WithMessage("file is empty")
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrGatewayTimeout.WithError(err)
	case errors.Is(err, provider.ErrInvocation):
		return common.ErrAIServiceError.WithError(err)
	default:
		return common.ErrInternalError.WithError(err)
	}
}

// respondError 記錄錯誤並寫出錯誤響應
func (h *Handler) respondError(c *gin.Context, requestID string, err error) {
	custom := toCustomError(err)

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("code", custom.Code),
		zap.Int("status", custom.Status),
		zap.Error(err),
	}
	if xerr, ok := extract.AsExtractionError(err); ok {
		fields = append(fields,
			zap.String("schema", xerr.Schema.String()),
			zap.String("kind", xerr.Kind.String()),
			zap.Strings("missing", xerr.MissingFields()),
		)
	}

	if custom.Status >= 500 {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求處理失敗", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(custom.Status, custom.Response(h.debug))
}

package handler

import (
	"github.com/gin-gonic/gin"

	"doc-rag-api/internal/interfaces/http/dto"
	"doc-rag-api/pkg/errors"
	"doc-rag-api/pkg/logger"
)

// respondError 将应用错误映射为 HTTP 响应。部分删除保留独立的
// 错误码，调用方必须能把"没删成"和"删了一半"区分开。
func respondError(c *gin.Context, err error, fallback string) {
	ctx := c.Request.Context()

	if errors.IsAppError(err) {
		appErr := errors.AsAppError(err)
		if appErr.HTTPStatus >= 500 {
			logger.Error(ctx, fallback, err)
		}
		dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, &dto.ErrorDetail{
			ErrorCode: string(appErr.Code),
			Details:   appErr.Detail,
		})
		return
	}

	logger.Error(ctx, fallback, err)
	dto.InternalError(c, fallback)
}

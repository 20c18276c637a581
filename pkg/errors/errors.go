// Package errors 提供统一的错误定义
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1002"
	CodeConflict           ErrorCode = "1003"
	CodeTooManyRequests    ErrorCode = "1004"
	CodeInternalError      ErrorCode = "1005"
	CodeServiceUnavailable ErrorCode = "1006"

	// 资源错误 (2xxx)
	CodeDocumentNotFound ErrorCode = "2001"
	CodeChatRoomNotFound ErrorCode = "2002"
	CodeChatRoomInactive ErrorCode = "2003"

	// 业务错误 (3xxx)
	CodeIngestFailed    ErrorCode = "3001"
	CodeRetrievalFailed ErrorCode = "3002"
	CodeEmbeddingFailed ErrorCode = "3003"
	CodeLLMCallFailed   ErrorCode = "3004"
	CodeExtractFailed   ErrorCode = "3005"
	// CodePartialDelete 两阶段删除只完成了一半：元数据与向量库已不一致，
	// 需要人工修复，不能与普通失败混为一谈。
	CodePartialDelete ErrorCode = "3006"

	// 外部服务错误 (4xxx)
	CodeDatabaseError ErrorCode = "4001"
	CodeCacheError    ErrorCode = "4002"
	CodeVectorDBError ErrorCode = "4003"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail
	return e
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeNotFound, CodeDocumentNotFound, CodeChatRoomNotFound:
		return http.StatusNotFound
	case CodeChatRoomInactive:
		return http.StatusGone
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case CodeEmbeddingFailed, CodeLLMCallFailed, CodeVectorDBError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrDocumentNotFound = New(CodeDocumentNotFound, "document not found")
	ErrChatRoomNotFound = New(CodeChatRoomNotFound, "chat room not found")

	ErrIngestFailed    = New(CodeIngestFailed, "document ingest failed")
	ErrRetrievalFailed = New(CodeRetrievalFailed, "retrieval failed")
	ErrEmbeddingFailed = New(CodeEmbeddingFailed, "embedding call failed")
	ErrLLMCallFailed   = New(CodeLLMCallFailed, "LLM call failed")
)

// NewPartialDelete 创建部分删除错误，orphanedSide 标明残留数据所在的一侧
func NewPartialDelete(documentName, orphanedSide string, err error) *AppError {
	return &AppError{
		Code:       CodePartialDelete,
		Message:    fmt.Sprintf("partial delete of document %q: %s data orphaned", documentName, orphanedSide),
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsPartialDelete 检查是否为部分删除错误
func IsPartialDelete(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodePartialDelete
	}
	return false
}

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

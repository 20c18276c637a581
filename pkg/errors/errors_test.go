package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartialDeleteIsDistinct(t *testing.T) {
	cause := fmt.Errorf("vector delete failed")
	err := NewPartialDelete("notes.txt", "vector", cause)

	assert.True(t, IsPartialDelete(err))
	assert.Equal(t, CodePartialDelete, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Message, "notes.txt")
	assert.Contains(t, err.Message, "vector")

	// 普通的删除失败不能被误判为部分删除
	plain := Wrap(cause, CodeVectorDBError, "vector delete failed")
	assert.False(t, IsPartialDelete(plain))
	assert.False(t, IsPartialDelete(cause))
}

func TestPartialDeleteSurvivesWrapping(t *testing.T) {
	inner := NewPartialDelete("notes.txt", "vector", fmt.Errorf("timeout"))
	wrapped := fmt.Errorf("delete saga: %w", inner)

	assert.True(t, IsPartialDelete(wrapped))
	assert.Equal(t, CodePartialDelete, AsAppError(wrapped).Code)
}

func TestCodeToHTTPStatus(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeDocumentNotFound, http.StatusNotFound},
		{CodeChatRoomNotFound, http.StatusNotFound},
		{CodeChatRoomInactive, http.StatusGone},
		{CodeTooManyRequests, http.StatusTooManyRequests},
		// 上游依赖失败对外是网关错误，而不是笼统的 500
		{CodeEmbeddingFailed, http.StatusBadGateway},
		{CodeLLMCallFailed, http.StatusBadGateway},
		{CodeVectorDBError, http.StatusBadGateway},
		{CodePartialDelete, http.StatusInternalServerError},
		{CodeDatabaseError, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, New(tc.code, "x").HTTPStatus, "code %s", tc.code)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, CodeDatabaseError, "failed to delete document record")

	require.True(t, IsAppError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), string(CodeDatabaseError))
}

func TestAsAppErrorFallback(t *testing.T) {
	err := AsAppError(fmt.Errorf("plain"))
	assert.Equal(t, CodeUnknown, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
}

package rag

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-rag-api/pkg/errors"
)

func TestDeleteRemovesBothSides(t *testing.T) {
	docs := &stubDocRepo{deleteOK: true}
	vector := newStubVectorStore()
	deleter := NewDeleter(docs, vector)

	err := deleter.Delete(context.Background(), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"notes.txt"}, docs.deleted)
	assert.Equal(t, []string{"notes.txt"}, vector.deleted)
}

func TestDeleteNotFoundSkipsVectorSide(t *testing.T) {
	docs := &stubDocRepo{deleteOK: false}
	vector := newStubVectorStore()
	deleter := NewDeleter(docs, vector)

	err := deleter.Delete(context.Background(), "missing.txt")
	require.Error(t, err)
	assert.Equal(t, errors.CodeDocumentNotFound, errors.AsAppError(err).Code)
	assert.Empty(t, vector.deleted, "vector side must not be touched when the document does not exist")
}

func TestDeletePartialFailureIsDistinct(t *testing.T) {
	docs := &stubDocRepo{deleteOK: true}
	vector := newStubVectorStore()
	vector.deleteErr = fmt.Errorf("milvus delete timed out")
	deleter := NewDeleter(docs, vector)

	err := deleter.Delete(context.Background(), "notes.txt")
	require.Error(t, err)
	require.True(t, errors.IsPartialDelete(err), "vector failure after metadata delete must surface as partial delete")
	assert.Equal(t, errors.CodePartialDelete, errors.AsAppError(err).Code)
	// 元数据侧此时已经删掉
	assert.Equal(t, []string{"notes.txt"}, docs.deleted)
}

func TestDeleteDatabaseFailure(t *testing.T) {
	docs := &stubDocRepo{deleteErr: fmt.Errorf("connection reset")}
	deleter := NewDeleter(docs, newStubVectorStore())

	err := deleter.Delete(context.Background(), "notes.txt")
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.AsAppError(err).Code)
	assert.False(t, errors.IsPartialDelete(err))
}

func TestDeleteEmptyName(t *testing.T) {
	deleter := NewDeleter(&stubDocRepo{}, newStubVectorStore())

	err := deleter.Delete(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidParam, errors.AsAppError(err).Code)
}

package rag

import (
	"context"
	"strings"

	"doc-rag-api/internal/domain/repository"
	"doc-rag-api/pkg/errors"
	"doc-rag-api/pkg/logger"
)

// Deleter 文档删除的两段式 saga：先删元数据行，再删向量分块。
// 两步不在同一事务里，第二步失败会留下孤儿向量，必须用独立的
// 部分删除错误上报，方便运维针对性清理。
type Deleter struct {
	docs   repository.DocumentRepository
	vector VectorStore
}

// NewDeleter 创建文档删除器
func NewDeleter(docs repository.DocumentRepository, vector VectorStore) *Deleter {
	return &Deleter{docs: docs, vector: vector}
}

// Delete 删除指定文档及其全部向量分块
func (d *Deleter) Delete(ctx context.Context, documentName string) error {
	documentName = strings.TrimSpace(documentName)
	if documentName == "" {
		return errors.New(errors.CodeInvalidParam, "document name is required")
	}
	ctx = logger.WithContext(ctx, logger.DocumentKey, documentName)

	// 阶段一：元数据行。删不到即文档不存在，向量侧不再动。
	deleted, err := d.docs.DeleteByName(ctx, documentName)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to delete document record")
	}
	if !deleted {
		return errors.New(errors.CodeDocumentNotFound, "document not found").WithDetail(documentName)
	}

	// 阶段二：向量分块。此处失败时元数据已经没了，状态不一致。
	if err := d.vector.DeleteByDocument(ctx, documentName); err != nil {
		logger.Error(ctx, "document metadata deleted but vector cleanup failed", err)
		return errors.NewPartialDelete(documentName, "vector", err)
	}

	logger.Info(ctx, "document deleted")
	return nil
}

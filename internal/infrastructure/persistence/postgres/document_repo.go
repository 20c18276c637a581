// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"doc-rag-api/internal/domain/entity"
	"doc-rag-api/internal/domain/repository"
)

// DocumentRepository 文档仓储实现
type DocumentRepository struct {
	client *Client
}

// NewDocumentRepository 创建文档仓储
func NewDocumentRepository(client *Client) *DocumentRepository {
	return &DocumentRepository{client: client}
}

var _ repository.DocumentRepository = (*DocumentRepository)(nil)

// Create 创建文档记录
func (r *DocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.Create")
	defer span.End()

	if err := r.client.db.WithContext(ctx).Create(doc).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// Upsert 按文档名写入，重名覆盖摘要、分块数与来源类型
func (r *DocumentRepository) Upsert(ctx context.Context, doc *entity.Document) error {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.Upsert")
	defer span.End()

	err := r.client.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"summary", "chunk_count", "source_kind", "updated_at"}),
	}).Create(doc).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// GetByName 按文档名查询，不存在时返回 nil
func (r *DocumentRepository) GetByName(ctx context.Context, name string) (*entity.Document, error) {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.GetByName")
	defer span.End()

	var doc entity.Document
	err := r.client.db.WithContext(ctx).
		Where("document_name = ?", name).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// List 按创建时间倒序列出全部文档
func (r *DocumentRepository) List(ctx context.Context) ([]*entity.Document, error) {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.List")
	defer span.End()

	var docs []*entity.Document
	err := r.client.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// DeleteByName 按文档名删除，返回是否确有删除
func (r *DocumentRepository) DeleteByName(ctx context.Context, name string) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.DeleteByName")
	defer span.End()

	result := r.client.db.WithContext(ctx).
		Where("document_name = ?", name).
		Delete(&entity.Document{})
	if result.Error != nil {
		span.RecordError(result.Error)
		return false, fmt.Errorf("failed to delete document: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Count 文档总数
func (r *DocumentRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.Count")
	defer span.End()

	var count int64
	err := r.client.db.WithContext(ctx).
		Model(&entity.Document{}).
		Count(&count).Error
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// CountBySourceKind 按来源类型统计文档数
func (r *DocumentRepository) CountBySourceKind(ctx context.Context) (map[string]int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.CountBySourceKind")
	defer span.End()

	var rows []struct {
		SourceKind string
		Count      int64
	}
	err := r.client.db.WithContext(ctx).
		Model(&entity.Document{}).
		Select("source_kind, COUNT(*) AS count").
		Group("source_kind").
		Scan(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count documents by source kind: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.SourceKind] = row.Count
	}
	return counts, nil
}

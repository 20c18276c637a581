// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"doc-rag-api/internal/domain/entity"
	"doc-rag-api/internal/domain/repository"
)

// QueryRepository 查询记录仓储实现
type QueryRepository struct {
	client *Client
}

// NewQueryRepository 创建查询记录仓储
func NewQueryRepository(client *Client) *QueryRepository {
	return &QueryRepository{client: client}
}

var _ repository.QueryRepository = (*QueryRepository)(nil)

// Create 写入一条查询记录
func (r *QueryRepository) Create(ctx context.Context, record *entity.QueryRecord) error {
	ctx, span := tracer.Start(ctx, "postgres.QueryRepository.Create")
	defer span.End()

	if err := r.client.db.WithContext(ctx).Create(record).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create query record: %w", err)
	}
	return nil
}

// ListRecent 按时间倒序取最近的查询记录
func (r *QueryRepository) ListRecent(ctx context.Context, limit int) ([]*entity.QueryRecord, error) {
	ctx, span := tracer.Start(ctx, "postgres.QueryRepository.ListRecent")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}

	var records []*entity.QueryRecord
	err := r.client.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list query records: %w", err)
	}
	return records, nil
}

// Count 查询记录总数
func (r *QueryRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.QueryRepository.Count")
	defer span.End()

	var count int64
	err := r.client.db.WithContext(ctx).
		Model(&entity.QueryRecord{}).
		Count(&count).Error
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count query records: %w", err)
	}
	return count, nil
}

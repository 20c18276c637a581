// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"doc-rag-api/internal/domain/entity"
	"doc-rag-api/internal/domain/repository"
)

// ChatRoomRepository 聊天室仓储实现
type ChatRoomRepository struct {
	client *Client
}

// NewChatRoomRepository 创建聊天室仓储
func NewChatRoomRepository(client *Client) *ChatRoomRepository {
	return &ChatRoomRepository{client: client}
}

var _ repository.ChatRoomRepository = (*ChatRoomRepository)(nil)

// Create 创建聊天室
func (r *ChatRoomRepository) Create(ctx context.Context, room *entity.ChatRoom) error {
	ctx, span := tracer.Start(ctx, "postgres.ChatRoomRepository.Create")
	defer span.End()

	if err := r.client.db.WithContext(ctx).Create(room).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create chat room: %w", err)
	}
	return nil
}

// GetByID 按 ID 查询聊天室，不存在时返回 nil
func (r *ChatRoomRepository) GetByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChatRoomRepository.GetByID")
	defer span.End()

	var room entity.ChatRoom
	err := r.client.db.WithContext(ctx).
		Where("id = ?", id).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get chat room: %w", err)
	}
	return &room, nil
}

// ListActive 按创建时间倒序列出未停用的聊天室
func (r *ChatRoomRepository) ListActive(ctx context.Context) ([]*entity.ChatRoom, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChatRoomRepository.ListActive")
	defer span.End()

	var rooms []*entity.ChatRoom
	err := r.client.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&rooms).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list chat rooms: %w", err)
	}
	return rooms, nil
}

// Deactivate 软删除：标记停用并保留历史消息，返回是否确有变更
func (r *ChatRoomRepository) Deactivate(ctx context.Context, id string) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChatRoomRepository.Deactivate")
	defer span.End()

	result := r.client.db.WithContext(ctx).
		Model(&entity.ChatRoom{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		span.RecordError(result.Error)
		return false, fmt.Errorf("failed to deactivate chat room: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// CountActive 未停用聊天室数量
func (r *ChatRoomRepository) CountActive(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChatRoomRepository.CountActive")
	defer span.End()

	var count int64
	err := r.client.db.WithContext(ctx).
		Model(&entity.ChatRoom{}).
		Where("is_active = ?", true).
		Count(&count).Error
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count chat rooms: %w", err)
	}
	return count, nil
}

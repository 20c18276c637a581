// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"doc-rag-api/internal/domain/entity"
	"doc-rag-api/internal/domain/repository"
)

// ChatMessageRepository 聊天室消息仓储实现
type ChatMessageRepository struct {
	client *Client
}

// NewChatMessageRepository 创建聊天室消息仓储
func NewChatMessageRepository(client *Client) *ChatMessageRepository {
	return &ChatMessageRepository{client: client}
}

var _ repository.ChatMessageRepository = (*ChatMessageRepository)(nil)

// Create 写入一条聊天室消息
func (r *ChatMessageRepository) Create(ctx context.Context, msg *entity.ChatMessage) error {
	ctx, span := tracer.Start(ctx, "postgres.ChatMessageRepository.Create")
	defer span.End()

	if err := r.client.db.WithContext(ctx).Create(msg).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create chat message: %w", err)
	}
	return nil
}

// ListByRoom 按时间升序取指定聊天室的消息
func (r *ChatMessageRepository) ListByRoom(ctx context.Context, roomID string, limit int) ([]*entity.ChatMessage, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChatMessageRepository.ListByRoom")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}

	var messages []*entity.ChatMessage
	err := r.client.db.WithContext(ctx).
		Where("chat_room_id = ?", roomID).
		Order("timestamp ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return messages, nil
}

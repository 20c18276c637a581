// Package repository 定义领域仓储接口
package repository

import (
	"context"

	"doc-rag-api/internal/domain/entity"
)

// DocumentRepository 文档元数据仓储
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	Upsert(ctx context.Context, doc *entity.Document) error
	GetByName(ctx context.Context, name string) (*entity.Document, error)
	List(ctx context.Context) ([]*entity.Document, error)
	DeleteByName(ctx context.Context, name string) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountBySourceKind(ctx context.Context) (map[string]int64, error)
}

// ChatRoomRepository 对话房间仓储
type ChatRoomRepository interface {
	Create(ctx context.Context, room *entity.ChatRoom) error
	GetByID(ctx context.Context, id string) (*entity.ChatRoom, error)
	ListActive(ctx context.Context) ([]*entity.ChatRoom, error)
	Deactivate(ctx context.Context, id string) (bool, error)
	CountActive(ctx context.Context) (int64, error)
}

// QueryRepository 查询记录仓储（追加写）
type QueryRepository interface {
	Create(ctx context.Context, record *entity.QueryRecord) error
	ListRecent(ctx context.Context, limit int) ([]*entity.QueryRecord, error)
	Count(ctx context.Context) (int64, error)
}

// ChatMessageRepository 房间消息仓储
type ChatMessageRepository interface {
	Create(ctx context.Context, msg *entity.ChatMessage) error
	ListByRoom(ctx context.Context, roomID string, limit int) ([]*entity.ChatMessage, error)
}

// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"doc-rag-api/internal/domain/entity"
)

// CreateChatRoomRequest 创建聊天室请求
type CreateChatRoomRequest struct {
	Name     string   `json:"name" binding:"required"`
	Contexts []string `json:"contexts"`
	Provider string   `json:"provider"`
}

// ChatRoomResponse 聊天室响应
type ChatRoomResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contexts  []string  `json:"contexts"`
	Provider  string    `json:"provider"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ListChatRoomsResponse 聊天室列表响应
type ListChatRoomsResponse struct {
	ChatRooms []ChatRoomResponse `json:"chat_rooms"`
	Total     int                `json:"total"`
}

// ChatMessageResponse 聊天室消息响应
type ChatMessageResponse struct {
	ID              string                 `json:"id"`
	Query           string                 `json:"query"`
	Response        string                 `json:"response"`
	RelevancyScores []RelevancyScoreEntry  `json:"relevancy_scores,omitempty"`
	Timestamp       time.Time              `json:"timestamp"`
}

// RelevancyScoreEntry 单文档相关性得分
type RelevancyScoreEntry struct {
	DocumentName string `json:"document_name"`
	Score        int    `json:"score"`
}

// ListChatMessagesResponse 聊天室消息列表响应
type ListChatMessagesResponse struct {
	Messages []ChatMessageResponse `json:"messages"`
	Total    int                   `json:"total"`
}

// ToChatRoomResponse 实体转响应
func ToChatRoomResponse(room *entity.ChatRoom) ChatRoomResponse {
	contexts := room.Contexts
	if contexts == nil {
		contexts = []string{}
	}
	return ChatRoomResponse{
		ID:        room.ID,
		Name:      room.Name,
		Contexts:  contexts,
		Provider:  string(room.Provider),
		IsActive:  room.IsActive,
		CreatedAt: room.CreatedAt,
	}
}

// ToListChatRoomsResponse 实体列表转响应
func ToListChatRoomsResponse(rooms []*entity.ChatRoom) ListChatRoomsResponse {
	items := make([]ChatRoomResponse, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, ToChatRoomResponse(room))
	}
	return ListChatRoomsResponse{
		ChatRooms: items,
		Total:     len(items),
	}
}

// ToChatMessageResponse 实体转响应
func ToChatMessageResponse(msg *entity.ChatMessage) ChatMessageResponse {
	scores := make([]RelevancyScoreEntry, 0, len(msg.RelevancyScores))
	for _, s := range msg.RelevancyScores {
		scores = append(scores, RelevancyScoreEntry{
			DocumentName: s.DocumentName,
			Score:        s.Score,
		})
	}
	return ChatMessageResponse{
		ID:              msg.ID,
		Query:           msg.Query,
		Response:        msg.Response,
		RelevancyScores: scores,
		Timestamp:       msg.Timestamp,
	}
}

// ToListChatMessagesResponse 实体列表转响应
func ToListChatMessagesResponse(messages []*entity.ChatMessage) ListChatMessagesResponse {
	items := make([]ChatMessageResponse, 0, len(messages))
	for _, msg := range messages {
		items = append(items, ToChatMessageResponse(msg))
	}
	return ListChatMessagesResponse{
		Messages: items,
		Total:    len(items),
	}
}

package entity

import (
	"time"
)

// Provider LLM 提供商
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// StringSlice jsonb 字符串数组
type StringSlice []string

// ChatRoom 对话上下文实体。contexts 在创建时固定，之后不可修改；
// 删除为软删除（is_active=false）。
type ChatRoom struct {
	ID        string      `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string      `json:"name" gorm:"type:varchar(255);not null"`
	Contexts  StringSlice `json:"contexts" gorm:"type:jsonb;serializer:json"`
	Provider  Provider    `json:"provider" gorm:"type:varchar(32);not null;default:'openai'"`
	IsActive  bool        `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time   `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (ChatRoom) TableName() string {
	return "chat_rooms"
}

// AllowsDocument 检查文档是否属于房间的上下文集合。
// 空 contexts 表示不限定（全局检索）。
func (r *ChatRoom) AllowsDocument(documentName string) bool {
	if len(r.Contexts) == 0 {
		return true
	}
	for _, name := range r.Contexts {
		if name == documentName {
			return true
		}
	}
	return false
}

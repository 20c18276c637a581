package entity

import (
	"time"
)

// RelevancyScore 单文档相关性评分，随查询记录持久化
type RelevancyScore struct {
	DocumentName string `json:"document_name"`
	Score        int    `json:"score"`
}

// QueryRecord 查询记录，追加写入，写入后不可变
type QueryRecord struct {
	ID              string           `json:"id" gorm:"type:uuid;primaryKey"`
	Query           string           `json:"query" gorm:"type:text;not null"`
	ChatRoomID      string           `json:"chat_room_id,omitempty" gorm:"type:uuid;index;default:null"`
	Response        string           `json:"response,omitempty" gorm:"type:text"`
	RelevancyScores []RelevancyScore `json:"relevancy_scores,omitempty" gorm:"type:jsonb;serializer:json"`
	Timestamp       time.Time        `json:"timestamp" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (QueryRecord) TableName() string {
	return "queries"
}

// ChatMessage 房间内的一条问答消息
type ChatMessage struct {
	ID              string           `json:"id" gorm:"type:uuid;primaryKey"`
	ChatRoomID      string           `json:"chat_room_id" gorm:"type:uuid;index;not null"`
	Query           string           `json:"query" gorm:"type:text;not null"`
	Response        string           `json:"response" gorm:"type:text"`
	RelevancyScores []RelevancyScore `json:"relevancy_scores,omitempty" gorm:"type:jsonb;serializer:json"`
	Timestamp       time.Time        `json:"timestamp" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (ChatMessage) TableName() string {
	return "chat_messages"
}

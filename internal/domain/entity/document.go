// Package entity 定义领域实体
package entity

import (
	"time"
)

// SourceKind 文档来源类型
type SourceKind string

const (
	SourceKindText SourceKind = "text"
	SourceKindPDF  SourceKind = "pdf"
)

// Document 文档元数据实体。
// 文档与它的向量分块通过 document_name 关联，两个存储各自独立一致，
// 不存在跨库外键约束。
type Document struct {
	ID         string     `json:"id" gorm:"type:uuid;primaryKey"`
	Name       string     `json:"document_name" gorm:"column:document_name;type:varchar(255);uniqueIndex;not null"`
	Summary    string     `json:"summary,omitempty" gorm:"type:text"`
	ChunkCount int        `json:"chunk_count" gorm:"not null;default:0"`
	SourceKind SourceKind `json:"source_kind" gorm:"type:varchar(32);not null;default:'text'"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Document) TableName() string {
	return "documents"
}

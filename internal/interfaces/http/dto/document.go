// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"doc-rag-api/internal/domain/entity"
)

// IngestDocumentResponse 文档摄取响应
type IngestDocumentResponse struct {
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	ChunkCount   int    `json:"chunk_count"`
	Summary      string `json:"summary,omitempty"`
}

// DocumentResponse 文档元数据响应
type DocumentResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Summary    string    `json:"summary,omitempty"`
	ChunkCount int       `json:"chunk_count"`
	SourceKind string    `json:"source_kind"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DocumentDetailResponse 文档详情响应，附带分块内容
type DocumentDetailResponse struct {
	DocumentResponse
	Chunks []ChunkResponse `json:"chunks"`
}

// ChunkResponse 单个分块
type ChunkResponse struct {
	VectorID string `json:"vector_id"`
	Ordinal  int    `json:"ordinal"`
	Text     string `json:"text"`
}

// ListDocumentsResponse 文档列表响应
type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int                `json:"total"`
}

// ToDocumentResponse 实体转响应
func ToDocumentResponse(doc *entity.Document) DocumentResponse {
	return DocumentResponse{
		ID:         doc.ID,
		Name:       doc.Name,
		Summary:    doc.Summary,
		ChunkCount: doc.ChunkCount,
		SourceKind: string(doc.SourceKind),
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}

// ToListDocumentsResponse 实体列表转响应
func ToListDocumentsResponse(docs []*entity.Document) ListDocumentsResponse {
	items := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		items = append(items, ToDocumentResponse(doc))
	}
	return ListDocumentsResponse{
		Documents: items,
		Total:     len(items),
	}
}

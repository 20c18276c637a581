// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"doc-rag-api/internal/application/rag"
)

// QueryRequest 查询请求
type QueryRequest struct {
	Query      string `json:"query" binding:"required"`
	ChatRoomID string `json:"chat_room_id"`
	TopK       int    `json:"top_k"`
}

// QueryResponse 查询响应
type QueryResponse struct {
	Outcome string           `json:"outcome"`
	Answer  string           `json:"answer"`
	Sources []SourceResponse `json:"sources"`
}

// SourceResponse 回答引用的分块来源
type SourceResponse struct {
	DocName   string            `json:"docName"`
	Relevancy RelevancyResponse `json:"relevancy"`
	Content   string            `json:"content"`
	VectorID  string            `json:"vector_id"`
}

// RelevancyResponse 相关性评分
type RelevancyResponse struct {
	Score          int     `json:"score"`
	EmbeddingScore float64 `json:"embedding_score"`
}

// ToQueryResponse 查询结果转响应
func ToQueryResponse(outcome *rag.QueryOutcome) QueryResponse {
	sources := make([]SourceResponse, 0, len(outcome.Sources))
	for _, s := range outcome.Sources {
		sources = append(sources, SourceResponse{
			DocName: s.DocName,
			Relevancy: RelevancyResponse{
				Score:          s.Relevancy.Score,
				EmbeddingScore: s.Relevancy.EmbeddingScore,
			},
			Content:  s.Content,
			VectorID: s.VectorID,
		})
	}
	return QueryResponse{
		Outcome: string(outcome.Kind),
		Answer:  outcome.Answer,
		Sources: sources,
	}
}

package rag

import "context"

// VectorStore 定义应用层对向量存储/检索的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Milvus）。
type VectorStore interface {
	UpsertChunks(ctx context.Context, documentName string, chunks []*VectorChunk) (int, error)
	Search(ctx context.Context, queryVector []float32, topK int) ([]*VectorHit, error)
	// SearchScoped 将 document_name ∈ allowed 谓词下推到向量库执行
	SearchScoped(ctx context.Context, queryVector []float32, topK int, allowed []string) ([]*VectorHit, error)
	DeleteByDocument(ctx context.Context, documentName string) error
	FetchChunks(ctx context.Context, documentName string, limit int) ([]*VectorChunk, error)
}

// VectorChunk 待写入向量库的分块
type VectorChunk struct {
	ID           string
	DocumentName string
	Ordinal      int
	Text         string
	Vector       []float32
}

// VectorHit 向量检索命中。Score 为余弦相似度，归一化向量下落在 [0,1]。
type VectorHit struct {
	ID           string
	DocumentName string
	Ordinal      int
	Text         string
	Score        float64
}

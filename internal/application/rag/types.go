package rag

// IngestInput 摄入输入
type IngestInput struct {
	DocumentName string
	Text         string
	SourceKind   string
}

// IngestResult 摄入结果
type IngestResult struct {
	DocumentID string
	ChunkCount int
	Summary    string
}

// QueryInput 查询输入。ChatRoomID 为空表示全局检索。
type QueryInput struct {
	Query      string
	ChatRoomID string
	TopK       int
}

// OutcomeKind 查询结果类型标签
type OutcomeKind string

const (
	// OutcomeEmptyRetrieval 评审过滤后没有候选，未调用生成模型
	OutcomeEmptyRetrieval OutcomeKind = "empty_retrieval"
	// OutcomeAnswered 正常合成了回答
	OutcomeAnswered OutcomeKind = "answered"
)

// Relevancy 单条来源的双重评分：评审分与向量相似度
type Relevancy struct {
	Score          int     `json:"score"`
	EmbeddingScore float64 `json:"embedding_score"`
}

// Source 回答的来源出处
type Source struct {
	DocName   string    `json:"docName"`
	Relevancy Relevancy `json:"relevancy"`
	Content   string    `json:"content"`
	VectorID  string    `json:"vector_id"`
}

// QueryOutcome 查询结果。Kind 区分空检索与正常回答两种形态，
// 代替按需拼 map 的动态响应。
type QueryOutcome struct {
	Kind    OutcomeKind `json:"kind"`
	Answer  string      `json:"answer"`
	Sources []Source    `json:"sources"`
}

// Candidate 评审候选：检索命中的一个分块
type Candidate struct {
	DocumentName string
	Text         string
}

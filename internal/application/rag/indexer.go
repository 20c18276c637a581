package rag

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"doc-rag-api/internal/domain/entity"
	"doc-rag-api/internal/domain/repository"
	"doc-rag-api/pkg/errors"
	"doc-rag-api/pkg/logger"
	"doc-rag-api/pkg/metrics"
)

const (
	defaultEmbeddingBatch = 32

	summaryInputWords = 300
	summaryMaxTokens  = 300
	summaryTemp       = 0.5
)

// Indexer 摄入管线：切分 -> 向量化 -> 写入向量库 -> 摘要 -> 写入元数据。
// 向量主键由 (document_name, ordinal) 确定性生成，同名重摄按键覆盖；
// 旧版本更长时多出的高序号分块不会被清理，先删后摄可以回到干净状态。
type Indexer struct {
	embedder embedding.Embedder
	vector   VectorStore
	docs     repository.DocumentRepository
	llm      ChatModelFactory

	embeddingBatchSize int
	chunkSize          int
	chunkOverlap       int
}

// NewIndexer 创建摄入管线
func NewIndexer(embedder embedding.Embedder, vector VectorStore, docs repository.DocumentRepository, llm ChatModelFactory, batchSize, chunkSize, chunkOverlap int) *Indexer {
	if batchSize <= 0 {
		batchSize = defaultEmbeddingBatch
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	return &Indexer{
		embedder:           embedder,
		vector:             vector,
		docs:               docs,
		llm:                llm,
		embeddingBatchSize: batchSize,
		chunkSize:          chunkSize,
		chunkOverlap:       chunkOverlap,
	}
}

// Ingest 摄入一篇文档
func (i *Indexer) Ingest(ctx context.Context, in IngestInput) (*IngestResult, error) {
	name := strings.TrimSpace(in.DocumentName)
	text := strings.TrimSpace(in.Text)
	if name == "" {
		return nil, errors.New(errors.CodeInvalidParam, "document_name is required")
	}
	if text == "" {
		return nil, errors.Wrap(ErrNoContent, errors.CodeInvalidParam, "no input content provided")
	}

	sourceKind := strings.TrimSpace(in.SourceKind)
	if sourceKind == "" {
		sourceKind = string(entity.SourceKindText)
	}

	chunks, err := SplitWords(text, i.chunkSize, i.chunkOverlap)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, errors.Wrap(ErrNoContent, errors.CodeInvalidParam, "text contains no tokens")
	}

	vectors, err := i.embedBatch(ctx, chunks)
	if err != nil {
		metrics.IngestTotal.WithLabelValues(sourceKind, "error").Inc()
		return nil, errors.Wrap(err, errors.CodeEmbeddingFailed, "failed to embed chunks")
	}
	if len(vectors) != len(chunks) {
		metrics.IngestTotal.WithLabelValues(sourceKind, "error").Inc()
		return nil, errors.New(errors.CodeEmbeddingFailed, "embedding count does not match chunk count")
	}

	vectorChunks := make([]*VectorChunk, 0, len(chunks))
	for ordinal, chunk := range chunks {
		vectorChunks = append(vectorChunks, &VectorChunk{
			ID:           entity.ChunkVectorID(name, ordinal),
			DocumentName: name,
			Ordinal:      ordinal,
			Text:         chunk,
			Vector:       vectors[ordinal],
		})
	}

	count, err := i.vector.UpsertChunks(ctx, name, vectorChunks)
	if err != nil {
		metrics.IngestTotal.WithLabelValues(sourceKind, "error").Inc()
		return nil, errors.Wrap(err, errors.CodeVectorDBError, "failed to upsert chunks")
	}

	// 摘要失败只降级为空摘要，不让摄入失败
	summary := i.summarize(ctx, text)

	doc := &entity.Document{
		ID:         uuid.NewString(),
		Name:       name,
		Summary:    summary,
		ChunkCount: count,
		SourceKind: entity.SourceKind(sourceKind),
	}
	if err := i.docs.Upsert(ctx, doc); err != nil {
		metrics.IngestTotal.WithLabelValues(sourceKind, "error").Inc()
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to persist document metadata")
	}

	metrics.IngestTotal.WithLabelValues(sourceKind, "ok").Inc()
	metrics.IngestChunks.WithLabelValues(sourceKind).Observe(float64(count))
	logger.Info(ctx, "document ingested", "document_name", name, "chunks", count)

	return &IngestResult{
		DocumentID: doc.ID,
		ChunkCount: count,
		Summary:    summary,
	}, nil
}

// summarize 请默认 Provider 概括正文开头，用于文档列表展示
func (i *Indexer) summarize(ctx context.Context, content string) string {
	if i.llm == nil {
		return ""
	}
	chatModel, err := i.llm.Get(ctx, "")
	if err != nil {
		logger.Warn(ctx, "summary model unavailable", "error", err.Error())
		return ""
	}

	msg, err := chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(buildSummaryPrompt(content, summaryInputWords)),
	}, model.WithTemperature(summaryTemp), model.WithMaxTokens(summaryMaxTokens))
	if err != nil {
		logger.Warn(ctx, "summary generation failed", "error", err.Error())
		return ""
	}
	if msg == nil {
		return ""
	}
	return strings.TrimSpace(msg.Content)
}

func (i *Indexer) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += i.embeddingBatchSize {
		end := start + i.embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		v64, err := i.embedder.EmbedStrings(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		for _, vec := range v64 {
			f32 := make([]float32, 0, len(vec))
			for _, x := range vec {
				f32 = append(f32, float32(x))
			}
			out = append(out, f32)
		}
	}
	return out, nil
}

package rag

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-rag-api/pkg/errors"
)

func newTestIndexer(vector *stubVectorStore, docs *stubDocRepo, chatModel *stubChatModel) *Indexer {
	return NewIndexer(&stubEmbedder{}, vector, docs, &stubFactory{model: chatModel}, 32, 5, 1)
}

func TestIngestDeterministicVectorIDs(t *testing.T) {
	vector := newStubVectorStore()
	docs := &stubDocRepo{}
	indexer := newTestIndexer(vector, docs, &stubChatModel{reply: "A short summary."})

	result, err := indexer.Ingest(context.Background(), IngestInput{
		DocumentName: "notes.txt",
		Text:         "The sky is blue. Grass is green.",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.ChunkCount)
	assert.Equal(t, "A short summary.", result.Summary)
	assert.NotEmpty(t, result.DocumentID)

	chunks := vector.upserts["notes.txt"]
	require.Len(t, chunks, 2)
	assert.Equal(t, "notes.txt-chunk-0", chunks[0].ID)
	assert.Equal(t, "notes.txt-chunk-1", chunks[1].ID)
	assert.Equal(t, 0, chunks[0].Ordinal)
	assert.Equal(t, 1, chunks[1].Ordinal)
	assert.NotEmpty(t, chunks[0].Vector)

	// 重新摄取同名文档产生完全相同的主键，向量库按键覆盖
	_, err = indexer.Ingest(context.Background(), IngestInput{
		DocumentName: "notes.txt",
		Text:         "The sky is blue. Grass is green.",
	})
	require.NoError(t, err)
	again := vector.upserts["notes.txt"]
	require.Len(t, again, 2)
	assert.Equal(t, chunks[0].ID, again[0].ID)
	assert.Equal(t, chunks[1].ID, again[1].ID)

	// 元数据与向量写入一致
	require.Len(t, docs.upserted, 2)
	assert.Equal(t, "notes.txt", docs.upserted[0].Name)
	assert.Equal(t, 2, docs.upserted[0].ChunkCount)
}

func TestIngestValidation(t *testing.T) {
	indexer := newTestIndexer(newStubVectorStore(), &stubDocRepo{}, &stubChatModel{})

	_, err := indexer.Ingest(context.Background(), IngestInput{DocumentName: "", Text: "content"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidParam, errors.AsAppError(err).Code)

	_, err = indexer.Ingest(context.Background(), IngestInput{DocumentName: "doc.txt", Text: "   "})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidParam, errors.AsAppError(err).Code)
}

func TestIngestSummaryFailureTolerated(t *testing.T) {
	vector := newStubVectorStore()
	docs := &stubDocRepo{}
	indexer := newTestIndexer(vector, docs, &stubChatModel{err: fmt.Errorf("llm down")})

	result, err := indexer.Ingest(context.Background(), IngestInput{
		DocumentName: "doc.txt",
		Text:         "some document body here",
	})
	require.NoError(t, err, "summary is best effort and must not fail ingest")
	assert.Empty(t, result.Summary)
	require.Len(t, docs.upserted, 1)
	assert.Empty(t, docs.upserted[0].Summary)
}

func TestIngestVectorStoreFailure(t *testing.T) {
	vector := newStubVectorStore()
	vector.upsertErr = fmt.Errorf("milvus unavailable")
	docs := &stubDocRepo{}
	indexer := newTestIndexer(vector, docs, &stubChatModel{reply: "summary"})

	_, err := indexer.Ingest(context.Background(), IngestInput{
		DocumentName: "doc.txt",
		Text:         "some document body here",
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeVectorDBError, errors.AsAppError(err).Code)
	assert.Empty(t, docs.upserted, "metadata must not be written when vectors fail")
}

func TestIngestEmbeddingFailure(t *testing.T) {
	vector := newStubVectorStore()
	indexer := NewIndexer(
		&stubEmbedder{err: fmt.Errorf("embedding api down")},
		vector, &stubDocRepo{}, &stubFactory{model: &stubChatModel{}}, 32, 5, 1,
	)

	_, err := indexer.Ingest(context.Background(), IngestInput{
		DocumentName: "doc.txt",
		Text:         "some document body here",
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeEmbeddingFailed, errors.AsAppError(err).Code)
	assert.Empty(t, vector.upserts)
}

func TestIngestEmbeddingCountMismatch(t *testing.T) {
	vector := newStubVectorStore()
	docs := &stubDocRepo{}
	indexer := NewIndexer(
		&stubEmbedder{short: true},
		vector, docs, &stubFactory{model: &stubChatModel{}}, 32, 5, 1,
	)

	_, err := indexer.Ingest(context.Background(), IngestInput{
		DocumentName: "doc.txt",
		Text:         "The sky is blue. Grass is green.",
	})
	require.Error(t, err, "an embedder returning fewer vectors than chunks must not panic the ingest")
	assert.Equal(t, errors.CodeEmbeddingFailed, errors.AsAppError(err).Code)
	assert.Empty(t, vector.upserts)
	assert.Empty(t, docs.upserted)
}

func TestIngestDefaultsSourceKind(t *testing.T) {
	docs := &stubDocRepo{}
	indexer := newTestIndexer(newStubVectorStore(), docs, &stubChatModel{reply: "s"})

	_, err := indexer.Ingest(context.Background(), IngestInput{
		DocumentName: "doc.txt",
		Text:         "body",
	})
	require.NoError(t, err)
	require.Len(t, docs.upserted, 1)
	assert.Equal(t, "text", string(docs.upserted[0].SourceKind))
}

func TestIngestBatchesEmbeddingCalls(t *testing.T) {
	embedder := &stubEmbedder{}
	vector := newStubVectorStore()
	// 批大小 2，块大小 3 无重叠：9 个词切成 3 块，向量化分两批
	indexer := NewIndexer(embedder, vector, &stubDocRepo{}, &stubFactory{model: &stubChatModel{reply: "s"}}, 2, 3, 0)

	_, err := indexer.Ingest(context.Background(), IngestInput{
		DocumentName: "doc.txt",
		Text:         "one two three four five six seven eight nine",
	})
	require.NoError(t, err)
	require.Len(t, embedder.calls, 2)
	assert.Len(t, embedder.calls[0], 2)
	assert.Len(t, embedder.calls[1], 1)
}

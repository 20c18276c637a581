package rag

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-rag-api/internal/domain/entity"
	"doc-rag-api/pkg/errors"
)

func newTestEngine(vector VectorStore, judge RelevanceJudge, chatModel *stubChatModel, rooms *stubRoomRepo, queries *stubQueryRepo, messages *stubMessageRepo) *Engine {
	if rooms == nil {
		rooms = &stubRoomRepo{rooms: map[string]*entity.ChatRoom{}}
	}
	if queries == nil {
		queries = &stubQueryRepo{}
	}
	if messages == nil {
		messages = &stubMessageRepo{}
	}
	return NewEngine(&stubEmbedder{}, vector, judge, &stubFactory{model: chatModel}, rooms, queries, messages, 3)
}

func TestAnswerBuildsSources(t *testing.T) {
	vector := newStubVectorStore()
	vector.hits = []*VectorHit{
		{ID: "notes.txt-chunk-0", DocumentName: "notes.txt", Ordinal: 0, Text: "the sky is blue", Score: 0.87654},
	}
	chatModel := &stubChatModel{reply: "The sky is blue."}
	queries := &stubQueryRepo{}
	engine := newTestEngine(vector, &stubJudge{scores: map[string]int{"notes.txt": 80}}, chatModel, nil, queries, nil)

	outcome, err := engine.Answer(context.Background(), QueryInput{Query: "what color is the sky?"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeAnswered, outcome.Kind)
	assert.Equal(t, "The sky is blue.", outcome.Answer)
	require.Len(t, outcome.Sources, 1)

	src := outcome.Sources[0]
	assert.Equal(t, "notes.txt", src.DocName)
	assert.Equal(t, 80, src.Relevancy.Score)
	assert.Equal(t, 0.88, src.Relevancy.EmbeddingScore, "embedding score rounds to 2 decimals")
	assert.Equal(t, "the sky is blue", src.Content)
	assert.Equal(t, "notes.txt-chunk-0", src.VectorID)

	// 未限定范围时走全库检索，并记录查询日志
	assert.Equal(t, 1, vector.searchCalls)
	assert.Empty(t, vector.scopedCalls)
	require.Len(t, queries.records, 1)
	assert.Equal(t, "what color is the sky?", queries.records[0].Query)
	assert.Empty(t, queries.records[0].ChatRoomID)
}

func TestAnswerShortCircuitSkipsGeneration(t *testing.T) {
	vector := newStubVectorStore()
	vector.hits = []*VectorHit{
		{ID: "a.txt-chunk-0", DocumentName: "a.txt", Text: "irrelevant", Score: 0.2},
	}
	chatModel := &stubChatModel{reply: "should never be produced"}
	queries := &stubQueryRepo{}
	engine := newTestEngine(vector, &stubJudge{scores: map[string]int{"a.txt": 0}}, chatModel, nil, queries, nil)

	outcome, err := engine.Answer(context.Background(), QueryInput{Query: "unrelated question"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeEmptyRetrieval, outcome.Kind)
	assert.Equal(t, EmptyRetrievalAnswer, outcome.Answer)
	assert.NotNil(t, outcome.Sources)
	assert.Empty(t, outcome.Sources)
	assert.Zero(t, chatModel.calls, "generation must not be called on empty retrieval")
	assert.Empty(t, queries.records)
}

func TestAnswerNoHitsShortCircuits(t *testing.T) {
	vector := newStubVectorStore()
	chatModel := &stubChatModel{reply: "unused"}
	engine := newTestEngine(vector, &stubJudge{scores: map[string]int{}}, chatModel, nil, nil, nil)

	outcome, err := engine.Answer(context.Background(), QueryInput{Query: "anything"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeEmptyRetrieval, outcome.Kind)
	assert.Zero(t, chatModel.calls)
}

func TestAnswerDropsZeroScoredDocuments(t *testing.T) {
	vector := newStubVectorStore()
	vector.hits = []*VectorHit{
		{ID: "keep.txt-chunk-0", DocumentName: "keep.txt", Text: "relevant", Score: 0.9},
		{ID: "drop.txt-chunk-0", DocumentName: "drop.txt", Text: "noise", Score: 0.8},
	}
	chatModel := &stubChatModel{reply: "answer"}
	engine := newTestEngine(vector, &stubJudge{scores: map[string]int{"keep.txt": 60, "drop.txt": 0}}, chatModel, nil, nil, nil)

	outcome, err := engine.Answer(context.Background(), QueryInput{Query: "q"})
	require.NoError(t, err)

	require.Len(t, outcome.Sources, 1)
	assert.Equal(t, "keep.txt", outcome.Sources[0].DocName)
}

func TestAnswerScopedSearchNeverLeaks(t *testing.T) {
	vector := newStubVectorStore()
	vector.hits = []*VectorHit{
		{ID: "allowed.txt-chunk-0", DocumentName: "allowed.txt", Text: "in scope", Score: 0.9},
		{ID: "other.txt-chunk-0", DocumentName: "other.txt", Text: "out of scope", Score: 0.95},
	}
	rooms := &stubRoomRepo{rooms: map[string]*entity.ChatRoom{
		"room-1": {ID: "room-1", Name: "r", Contexts: []string{"allowed.txt"}, Provider: entity.ProviderOpenAI, IsActive: true},
	}}
	chatModel := &stubChatModel{reply: "scoped answer"}
	queries := &stubQueryRepo{}
	messages := &stubMessageRepo{}
	engine := newTestEngine(vector, &stubJudge{scores: map[string]int{"allowed.txt": 70}}, chatModel, rooms, queries, messages)

	outcome, err := engine.Answer(context.Background(), QueryInput{Query: "q", ChatRoomID: "room-1"})
	require.NoError(t, err)

	assert.Zero(t, vector.searchCalls, "scoped query must not fall back to global search")
	require.Len(t, vector.scopedCalls, 1)
	assert.Equal(t, []string{"allowed.txt"}, vector.scopedCalls[0])

	for _, src := range outcome.Sources {
		assert.Equal(t, "allowed.txt", src.DocName, "sources must stay within room scope")
	}

	// 限定范围的查询同时记录到房间消息
	require.Len(t, messages.messages, 1)
	assert.Equal(t, "room-1", messages.messages[0].ChatRoomID)
	require.Len(t, queries.records, 1)
	assert.Equal(t, "room-1", queries.records[0].ChatRoomID)
}

// leakyVectorStore 无视 allowed 列表返回全部命中，模拟存储侧过滤失效
type leakyVectorStore struct {
	*stubVectorStore
}

func (s *leakyVectorStore) SearchScoped(ctx context.Context, vector []float32, topK int, allowed []string) ([]*VectorHit, error) {
	s.scopedCalls = append(s.scopedCalls, allowed)
	return s.hits, nil
}

func TestAnswerRechecksScopeOnStoreResults(t *testing.T) {
	vector := &leakyVectorStore{stubVectorStore: newStubVectorStore()}
	vector.hits = []*VectorHit{
		{ID: "allowed.txt-chunk-0", DocumentName: "allowed.txt", Text: "in scope", Score: 0.9},
		{ID: "other.txt-chunk-0", DocumentName: "other.txt", Text: "out of scope", Score: 0.95},
	}
	rooms := &stubRoomRepo{rooms: map[string]*entity.ChatRoom{
		"room-1": {ID: "room-1", Name: "r", Contexts: []string{"allowed.txt"}, Provider: entity.ProviderOpenAI, IsActive: true},
	}}
	judge := &stubJudge{scores: map[string]int{"allowed.txt": 70, "other.txt": 90}}
	engine := newTestEngine(vector, judge, &stubChatModel{reply: "scoped answer"}, rooms, &stubQueryRepo{}, &stubMessageRepo{})

	outcome, err := engine.Answer(context.Background(), QueryInput{Query: "q", ChatRoomID: "room-1"})
	require.NoError(t, err)

	require.Len(t, outcome.Sources, 1, "hits outside the room context must be dropped even if the store returns them")
	assert.Equal(t, "allowed.txt", outcome.Sources[0].DocName)
}

func TestAnswerRoomWithoutContextsSearchesGlobally(t *testing.T) {
	vector := newStubVectorStore()
	vector.hits = []*VectorHit{
		{ID: "any.txt-chunk-0", DocumentName: "any.txt", Text: "anything", Score: 0.8},
	}
	rooms := &stubRoomRepo{rooms: map[string]*entity.ChatRoom{
		"room-1": {ID: "room-1", Name: "r", Provider: entity.ProviderOpenAI, IsActive: true},
	}}
	queries := &stubQueryRepo{}
	messages := &stubMessageRepo{}
	engine := newTestEngine(vector, &stubJudge{scores: map[string]int{"any.txt": 60}}, &stubChatModel{reply: "a"}, rooms, queries, messages)

	outcome, err := engine.Answer(context.Background(), QueryInput{Query: "q", ChatRoomID: "room-1"})
	require.NoError(t, err)

	// contexts 为空的房间不限定文档集合，走全库检索
	assert.Equal(t, 1, vector.searchCalls)
	assert.Empty(t, vector.scopedCalls)
	require.Len(t, outcome.Sources, 1)

	// 但查询仍归属该房间
	require.Len(t, messages.messages, 1)
	assert.Equal(t, "room-1", messages.messages[0].ChatRoomID)
	require.Len(t, queries.records, 1)
	assert.Equal(t, "room-1", queries.records[0].ChatRoomID)
}

func TestAnswerUnknownRoom(t *testing.T) {
	vector := newStubVectorStore()
	engine := newTestEngine(vector, &stubJudge{}, &stubChatModel{}, nil, nil, nil)

	_, err := engine.Answer(context.Background(), QueryInput{Query: "q", ChatRoomID: "missing"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeChatRoomNotFound, errors.AsAppError(err).Code)
	assert.Zero(t, vector.searchCalls, "no retrieval for unknown rooms")
}

func TestAnswerInactiveRoom(t *testing.T) {
	rooms := &stubRoomRepo{rooms: map[string]*entity.ChatRoom{
		"room-1": {ID: "room-1", IsActive: false},
	}}
	engine := newTestEngine(newStubVectorStore(), &stubJudge{}, &stubChatModel{}, rooms, nil, nil)

	_, err := engine.Answer(context.Background(), QueryInput{Query: "q", ChatRoomID: "room-1"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeChatRoomNotFound, errors.AsAppError(err).Code)
}

func TestAnswerEmptyQuery(t *testing.T) {
	engine := newTestEngine(newStubVectorStore(), &stubJudge{}, &stubChatModel{}, nil, nil, nil)

	_, err := engine.Answer(context.Background(), QueryInput{Query: "   "})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidParam, errors.AsAppError(err).Code)
}

func TestAnswerRecordFailureDoesNotFailQuery(t *testing.T) {
	vector := newStubVectorStore()
	vector.hits = []*VectorHit{
		{ID: "a.txt-chunk-0", DocumentName: "a.txt", Text: "content", Score: 0.9},
	}
	queries := &stubQueryRepo{err: fmt.Errorf("database down")}
	engine := newTestEngine(vector, &stubJudge{scores: map[string]int{"a.txt": 55}}, &stubChatModel{reply: "answer"}, nil, queries, nil)

	outcome, err := engine.Answer(context.Background(), QueryInput{Query: "q"})
	require.NoError(t, err, "logging is best effort, the answer is already computed")
	assert.Equal(t, OutcomeAnswered, outcome.Kind)
	assert.Equal(t, "answer", outcome.Answer)
}

func TestAnswerGenerationFailure(t *testing.T) {
	vector := newStubVectorStore()
	vector.hits = []*VectorHit{
		{ID: "a.txt-chunk-0", DocumentName: "a.txt", Text: "content", Score: 0.9},
	}
	chatModel := &stubChatModel{err: fmt.Errorf("model unavailable")}
	engine := newTestEngine(vector, &stubJudge{scores: map[string]int{"a.txt": 80}}, chatModel, nil, nil, nil)

	_, err := engine.Answer(context.Background(), QueryInput{Query: "q"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeLLMCallFailed, errors.AsAppError(err).Code)
}

func TestAnswerEmbeddingFailure(t *testing.T) {
	vector := newStubVectorStore()
	queries := &stubQueryRepo{}
	engine := NewEngine(
		&stubEmbedder{err: fmt.Errorf("embedding api down")},
		vector,
		&stubJudge{},
		&stubFactory{model: &stubChatModel{}},
		&stubRoomRepo{rooms: map[string]*entity.ChatRoom{}},
		queries,
		&stubMessageRepo{},
		3,
	)

	_, err := engine.Answer(context.Background(), QueryInput{Query: "q"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeEmbeddingFailed, errors.AsAppError(err).Code)
}

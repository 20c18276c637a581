package rag

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"doc-rag-api/internal/domain/entity"
)

// stubEmbedder 返回确定性向量
type stubEmbedder struct {
	dim   int
	err   error
	short bool
	calls [][]string
}

func (s *stubEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	s.calls = append(s.calls, texts)
	if s.err != nil {
		return nil, s.err
	}
	if s.short && len(texts) > 0 {
		texts = texts[:len(texts)-1]
	}
	dim := s.dim
	if dim <= 0 {
		dim = 4
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		vec := make([]float64, dim)
		for d := range vec {
			vec[d] = float64(i + d)
		}
		out[i] = vec
	}
	return out, nil
}

// stubChatModel 固定回复的 ChatModel
type stubChatModel struct {
	reply string
	err   error
	calls int
}

func (m *stubChatModel) Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *stubChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("stream not supported")
}

// stubFactory 返回固定 ChatModel 的工厂
type stubFactory struct {
	model model.BaseChatModel
	err   error
}

func (f *stubFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.model, nil
}

// stubJudge 返回固定分数表
type stubJudge struct {
	scores map[string]int
	calls  int
}

func (j *stubJudge) Score(ctx context.Context, provider, query string, candidates []Candidate) map[string]int {
	j.calls++
	return j.scores
}

// stubVectorStore 记录调用的内存向量库
type stubVectorStore struct {
	hits        []*VectorHit
	fetched     []*VectorChunk
	upserts     map[string][]*VectorChunk
	deleted     []string
	searchCalls int
	scopedCalls [][]string

	upsertErr error
	searchErr error
	deleteErr error
}

func newStubVectorStore() *stubVectorStore {
	return &stubVectorStore{upserts: make(map[string][]*VectorChunk)}
}

func (s *stubVectorStore) UpsertChunks(ctx context.Context, documentName string, chunks []*VectorChunk) (int, error) {
	if s.upsertErr != nil {
		return 0, s.upsertErr
	}
	s.upserts[documentName] = chunks
	return len(chunks), nil
}

func (s *stubVectorStore) Search(ctx context.Context, vector []float32, topK int) ([]*VectorHit, error) {
	s.searchCalls++
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.hits, nil
}

func (s *stubVectorStore) SearchScoped(ctx context.Context, vector []float32, topK int, allowed []string) ([]*VectorHit, error) {
	s.scopedCalls = append(s.scopedCalls, allowed)
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	// 只返回允许范围内的命中，模拟服务端过滤
	permitted := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		permitted[name] = true
	}
	var out []*VectorHit
	for _, h := range s.hits {
		if permitted[h.DocumentName] {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *stubVectorStore) DeleteByDocument(ctx context.Context, documentName string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, documentName)
	return nil
}

func (s *stubVectorStore) FetchChunks(ctx context.Context, documentName string, limit int) ([]*VectorChunk, error) {
	return s.fetched, nil
}

// stubDocRepo 内存文档仓储
type stubDocRepo struct {
	upserted  []*entity.Document
	deleteOK  bool
	deleteErr error
	deleted   []string
	upsertErr error
}

func (r *stubDocRepo) Create(ctx context.Context, doc *entity.Document) error { return nil }

func (r *stubDocRepo) Upsert(ctx context.Context, doc *entity.Document) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserted = append(r.upserted, doc)
	return nil
}

func (r *stubDocRepo) GetByName(ctx context.Context, name string) (*entity.Document, error) {
	return nil, nil
}

func (r *stubDocRepo) List(ctx context.Context) ([]*entity.Document, error) { return nil, nil }

func (r *stubDocRepo) DeleteByName(ctx context.Context, name string) (bool, error) {
	if r.deleteErr != nil {
		return false, r.deleteErr
	}
	if r.deleteOK {
		r.deleted = append(r.deleted, name)
	}
	return r.deleteOK, nil
}

func (r *stubDocRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

func (r *stubDocRepo) CountBySourceKind(ctx context.Context) (map[string]int64, error) {
	return nil, nil
}

// stubRoomRepo 内存聊天室仓储
type stubRoomRepo struct {
	rooms map[string]*entity.ChatRoom
}

func (r *stubRoomRepo) Create(ctx context.Context, room *entity.ChatRoom) error { return nil }

func (r *stubRoomRepo) GetByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	return r.rooms[id], nil
}

func (r *stubRoomRepo) ListActive(ctx context.Context) ([]*entity.ChatRoom, error) {
	return nil, nil
}

func (r *stubRoomRepo) Deactivate(ctx context.Context, id string) (bool, error) { return false, nil }

func (r *stubRoomRepo) CountActive(ctx context.Context) (int64, error) { return 0, nil }

// stubQueryRepo 内存查询记录仓储
type stubQueryRepo struct {
	records []*entity.QueryRecord
	err     error
}

func (r *stubQueryRepo) Create(ctx context.Context, record *entity.QueryRecord) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	return nil
}

func (r *stubQueryRepo) ListRecent(ctx context.Context, limit int) ([]*entity.QueryRecord, error) {
	return r.records, nil
}

func (r *stubQueryRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.records)), nil
}

// stubMessageRepo 内存聊天室消息仓储
type stubMessageRepo struct {
	messages []*entity.ChatMessage
	err      error
}

func (r *stubMessageRepo) Create(ctx context.Context, msg *entity.ChatMessage) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *stubMessageRepo) ListByRoom(ctx context.Context, roomID string, limit int) ([]*entity.ChatMessage, error) {
	return r.messages, nil
}

package rag

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"doc-rag-api/internal/domain/entity"
	"doc-rag-api/internal/domain/repository"
	"doc-rag-api/pkg/errors"
	"doc-rag-api/pkg/logger"
	"doc-rag-api/pkg/metrics"
)

const (
	// DefaultTopK 默认检索条数
	DefaultTopK = 3
	maxTopK     = 50

	// EmptyRetrievalAnswer 空检索哨兵回答，此时不调用生成模型
	EmptyRetrievalAnswer = "No relevant documents were found for this query."
)

// RelevanceJudge 相关性评审端口，*Judge 为默认实现
type RelevanceJudge interface {
	Score(ctx context.Context, provider, query string, candidates []Candidate) map[string]int
}

// Engine 查询编排器：范围解析 -> 向量召回 -> 相关性评审 -> 过滤 ->
// 合成 -> 记账。单次查询内各步严格串行，步骤间无共享可变状态。
type Engine struct {
	embedder embedding.Embedder
	vector   VectorStore
	judge    RelevanceJudge
	llm      ChatModelFactory

	rooms    repository.ChatRoomRepository
	queries  repository.QueryRepository
	messages repository.ChatMessageRepository

	topK int
}

// NewEngine 创建查询编排器
func NewEngine(
	embedder embedding.Embedder,
	vector VectorStore,
	judge RelevanceJudge,
	llm ChatModelFactory,
	rooms repository.ChatRoomRepository,
	queries repository.QueryRepository,
	messages repository.ChatMessageRepository,
	topK int,
) *Engine {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Engine{
		embedder: embedder,
		vector:   vector,
		judge:    judge,
		llm:      llm,
		rooms:    rooms,
		queries:  queries,
		messages: messages,
		topK:     topK,
	}
}

// Answer 处理一次查询
func (e *Engine) Answer(ctx context.Context, in QueryInput) (*QueryOutcome, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, errors.New(errors.CodeInvalidParam, "query is required")
	}

	topK := in.TopK
	if topK <= 0 {
		topK = e.topK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	scoped := in.ChatRoomID != ""
	scopedLabel := "false"
	if scoped {
		scopedLabel = "true"
	}
	start := time.Now()
	defer func() {
		metrics.QueryDuration.WithLabelValues(scopedLabel).Observe(time.Since(start).Seconds())
	}()

	// 1) 范围解析
	var room *entity.ChatRoom
	var allowed []string
	provider := ""
	if scoped {
		var err error
		room, err = e.rooms.GetByID(ctx, in.ChatRoomID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load chat room")
		}
		if room == nil || !room.IsActive {
			return nil, errors.New(errors.CodeChatRoomNotFound, "chat room not found or inactive").
				WithDetail(in.ChatRoomID)
		}
		allowed = room.Contexts
		provider = string(room.Provider)
		ctx = logger.WithContext(ctx, logger.ChatRoomIDKey, room.ID)
	}

	// 2) 向量召回
	hits, err := e.retrieve(ctx, query, topK, allowed)
	if err != nil {
		metrics.QueryTotal.WithLabelValues(scopedLabel, "error").Inc()
		return nil, err
	}

	// 范围召回靠向量库谓词下推，返回结果仍按房间上下文复核一遍，
	// 越界文档在这里统一拦下
	if room != nil {
		inScope := make([]*VectorHit, 0, len(hits))
		for _, h := range hits {
			if room.AllowsDocument(h.DocumentName) {
				inScope = append(inScope, h)
			}
		}
		hits = inScope
	}

	// 3) 评审并广播到分块，0 分即淘汰。0 是显式分界：评审量表里
	// 任何正分都可入选，刻意偏向召回。
	candidates := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		candidates = append(candidates, Candidate{DocumentName: h.DocumentName, Text: h.Text})
	}
	scores := e.judge.Score(ctx, provider, query, candidates)

	survivors := make([]*VectorHit, 0, len(hits))
	for _, h := range hits {
		if scores[h.DocumentName] == 0 {
			continue
		}
		survivors = append(survivors, h)
	}

	// 4) 短路：没有存活候选就不花一次生成调用
	if len(survivors) == 0 {
		metrics.QueryTotal.WithLabelValues(scopedLabel, "empty").Inc()
		return &QueryOutcome{
			Kind:    OutcomeEmptyRetrieval,
			Answer:  EmptyRetrievalAnswer,
			Sources: []Source{},
		}, nil
	}

	// 5) 合成
	answer, err := e.synthesize(ctx, provider, query, survivors)
	if err != nil {
		metrics.QueryTotal.WithLabelValues(scopedLabel, "error").Inc()
		return nil, errors.Wrap(err, errors.CodeLLMCallFailed, "answer synthesis failed")
	}

	sources := make([]Source, 0, len(survivors))
	for _, h := range survivors {
		sources = append(sources, Source{
			DocName: h.DocumentName,
			Relevancy: Relevancy{
				Score:          scores[h.DocumentName],
				EmbeddingScore: math.Round(h.Score*100) / 100,
			},
			Content:  h.Text,
			VectorID: h.ID,
		})
	}

	outcome := &QueryOutcome{
		Kind:    OutcomeAnswered,
		Answer:  answer,
		Sources: sources,
	}

	// 6) 记账：尽力而为，失败只告警，已算出的回答照常返回
	e.record(ctx, query, room, outcome, scores)

	metrics.QueryTotal.WithLabelValues(scopedLabel, "answered").Inc()
	return outcome, nil
}

func (e *Engine) retrieve(ctx context.Context, query string, topK int, allowed []string) ([]*VectorHit, error) {
	v64, err := e.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeEmbeddingFailed, "failed to embed query")
	}
	if len(v64) == 0 {
		return nil, errors.New(errors.CodeEmbeddingFailed, "empty embedding result")
	}
	vec := make([]float32, 0, len(v64[0]))
	for _, x := range v64[0] {
		vec = append(vec, float32(x))
	}

	var hits []*VectorHit
	if len(allowed) > 0 {
		hits, err = e.vector.SearchScoped(ctx, vec, topK, allowed)
	} else {
		hits, err = e.vector.Search(ctx, vec, topK)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeVectorDBError, "vector search failed")
	}
	return hits, nil
}

func (e *Engine) synthesize(ctx context.Context, provider, query string, survivors []*VectorHit) (string, error) {
	chatModel, err := e.llm.Get(ctx, provider)
	if err != nil {
		return "", err
	}

	texts := make([]string, 0, len(survivors))
	for _, h := range survivors {
		texts = append(texts, h.Text)
	}

	msg, err := chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(buildAnswerPrompt(query, texts)),
	})
	if err != nil {
		return "", err
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", errors.New(errors.CodeLLMCallFailed, "empty completion")
	}
	return strings.TrimSpace(msg.Content), nil
}

// record 持久化查询记录与房间消息。写入失败不影响响应，但必须可观测：
// 静默丢失会悄悄蛀空审计与看板。
func (e *Engine) record(ctx context.Context, query string, room *entity.ChatRoom, outcome *QueryOutcome, scores map[string]int) {
	relevancy := make([]entity.RelevancyScore, 0, len(scores))
	for name, score := range scores {
		relevancy = append(relevancy, entity.RelevancyScore{DocumentName: name, Score: score})
	}

	record := &entity.QueryRecord{
		ID:              uuid.NewString(),
		Query:           query,
		Response:        outcome.Answer,
		RelevancyScores: relevancy,
	}
	if room != nil {
		record.ChatRoomID = room.ID
	}
	if err := e.queries.Create(ctx, record); err != nil {
		logger.Warn(ctx, "failed to persist query record", "error", err.Error())
	}

	if room != nil {
		msg := &entity.ChatMessage{
			ID:              uuid.NewString(),
			ChatRoomID:      room.ID,
			Query:           query,
			Response:        outcome.Answer,
			RelevancyScores: relevancy,
		}
		if err := e.messages.Create(ctx, msg); err != nil {
			logger.Warn(ctx, "failed to persist chat message", "error", err.Error())
		}
	}
}

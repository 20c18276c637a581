// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"doc-rag-api/internal/application/rag"
)

// Repository 文档分块向量仓储，实现 rag.VectorStore。
// 范围过滤下推到 Milvus 的布尔表达式，而不是按文档逐个查询再合并。
type Repository struct {
	client *Client
}

// NewRepository 创建向量仓储
func NewRepository(c *Client) *Repository {
	return &Repository{client: c}
}

var _ rag.VectorStore = (*Repository)(nil)

// EnsureCollection 确保 doc_chunks 集合、索引可用并已加载（不存在则创建）。
// 约束：不会做 drop/rebuild 等破坏性操作。
func (r *Repository) EnsureCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.EnsureCollection",
		trace.WithAttributes(attribute.String("collection", CollectionDocChunks)))
	defer span.End()

	exists, err := r.client.HasCollection(ctx, CollectionDocChunks)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !exists {
		schema := DocChunksSchema(r.client.config.Dimension)
		schema.CollectionName = r.client.CollectionName(CollectionDocChunks)
		if err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to create collection: %w", err)
		}
		if err := r.createIndex(ctx); err != nil {
			span.RecordError(err)
			return err
		}
	}

	return r.client.LoadCollection(ctx, CollectionDocChunks)
}

func (r *Repository) createIndex(ctx context.Context) error {
	idx, err := entity.NewIndexHNSW(
		entity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	collName := r.client.CollectionName(CollectionDocChunks)
	if err := r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// UpsertChunks 批量写入分块。主键确定性生成，重复摄取同一文档会
// 原位覆盖同序号分块，不产生重复行。
func (r *Repository) UpsertChunks(ctx context.Context, documentName string, chunks []*rag.VectorChunk) (int, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return 0, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.UpsertChunks",
		trace.WithAttributes(
			attribute.String("document_name", documentName),
			attribute.Int("count", len(chunks)),
		))
	defer span.End()

	if len(chunks) == 0 {
		return 0, nil
	}

	ids := make([]string, len(chunks))
	vectors := make([][]float32, len(chunks))
	docNames := make([]string, len(chunks))
	ordinals := make([]int64, len(chunks))
	texts := make([]string, len(chunks))

	for i, c := range chunks {
		ids[i] = c.ID
		vectors[i] = c.Vector
		docNames[i] = c.DocumentName
		ordinals[i] = int64(c.Ordinal)
		texts[i] = c.Text
	}

	dim := r.client.config.Dimension
	if dim <= 0 {
		dim = DefaultVectorDimension
	}

	idCol := entity.NewColumnVarChar("id", ids)
	vectorCol := entity.NewColumnFloatVector("vector", dim, vectors)
	docCol := entity.NewColumnVarChar("document_name", docNames)
	ordinalCol := entity.NewColumnInt64("ordinal", ordinals)
	textCol := entity.NewColumnVarChar("text_content", texts)

	collName := r.client.CollectionName(CollectionDocChunks)
	_, err := r.client.milvus.Upsert(ctx, collName, "",
		idCol, vectorCol, docCol, ordinalCol, textCol)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to upsert chunks: %w", err)
	}

	return len(chunks), nil
}

// Search 全库向量检索
func (r *Repository) Search(ctx context.Context, vector []float32, topK int) ([]*rag.VectorHit, error) {
	return r.search(ctx, vector, topK, "")
}

// SearchScoped 限定文档范围的向量检索
func (r *Repository) SearchScoped(ctx context.Context, vector []float32, topK int, allowed []string) ([]*rag.VectorHit, error) {
	if len(allowed) == 0 {
		return r.Search(ctx, vector, topK)
	}

	quoted := make([]string, 0, len(allowed))
	for _, name := range allowed {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		quoted = append(quoted, `"`+escapeExpr(name)+`"`)
	}
	if len(quoted) == 0 {
		return []*rag.VectorHit{}, nil
	}

	filter := fmt.Sprintf(`document_name in [%s]`, strings.Join(quoted, ", "))
	return r.search(ctx, vector, topK, filter)
}

func (r *Repository) search(ctx context.Context, vector []float32, topK int, filter string) ([]*rag.VectorHit, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.Search",
		trace.WithAttributes(
			attribute.Int("top_k", topK),
			attribute.Bool("scoped", filter != ""),
		))
	defer span.End()

	sp, err := entity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	collName := r.client.CollectionName(CollectionDocChunks)
	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		filter,
		[]string{"id", "document_name", "ordinal", "text_content"},
		[]entity.Vector{entity.FloatVector(vector)},
		"vector",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var hits []*rag.VectorHit
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			hit := &rag.VectorHit{
				Score: float64(result.Scores[i]),
			}
			if idCol, ok := result.Fields.GetColumn("id").(*entity.ColumnVarChar); ok {
				hit.ID = idCol.Data()[i]
			}
			if docCol, ok := result.Fields.GetColumn("document_name").(*entity.ColumnVarChar); ok {
				hit.DocumentName = docCol.Data()[i]
			}
			if ordCol, ok := result.Fields.GetColumn("ordinal").(*entity.ColumnInt64); ok {
				hit.Ordinal = int(ordCol.Data()[i])
			}
			if textCol, ok := result.Fields.GetColumn("text_content").(*entity.ColumnVarChar); ok {
				hit.Text = textCol.Data()[i]
			}
			hits = append(hits, hit)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(hits)))
	return hits, nil
}

// DeleteByDocument 删除指定文档的全部分块
func (r *Repository) DeleteByDocument(ctx context.Context, documentName string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.DeleteByDocument",
		trace.WithAttributes(attribute.String("document_name", documentName)))
	defer span.End()

	collName := r.client.CollectionName(CollectionDocChunks)
	filter := fmt.Sprintf(`document_name == "%s"`, escapeExpr(documentName))

	if err := r.client.milvus.Delete(ctx, collName, "", filter); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// FetchChunks 按序号升序取回指定文档的分块内容
func (r *Repository) FetchChunks(ctx context.Context, documentName string, limit int) ([]*rag.VectorChunk, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.FetchChunks",
		trace.WithAttributes(
			attribute.String("document_name", documentName),
			attribute.Int("limit", limit),
		))
	defer span.End()

	collName := r.client.CollectionName(CollectionDocChunks)
	filter := fmt.Sprintf(`document_name == "%s"`, escapeExpr(documentName))

	resultSet, err := r.client.milvus.Query(ctx,
		collName,
		nil,
		filter,
		[]string{"id", "document_name", "ordinal", "text_content"},
		client.WithLimit(int64(limit)),
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}

	var ids, docNames, texts []string
	var ordinals []int64
	for _, col := range resultSet {
		switch col.Name() {
		case "id":
			if c, ok := col.(*entity.ColumnVarChar); ok {
				ids = c.Data()
			}
		case "document_name":
			if c, ok := col.(*entity.ColumnVarChar); ok {
				docNames = c.Data()
			}
		case "ordinal":
			if c, ok := col.(*entity.ColumnInt64); ok {
				ordinals = c.Data()
			}
		case "text_content":
			if c, ok := col.(*entity.ColumnVarChar); ok {
				texts = c.Data()
			}
		}
	}

	chunks := make([]*rag.VectorChunk, 0, len(ids))
	for i := range ids {
		chunk := &rag.VectorChunk{ID: ids[i]}
		if i < len(docNames) {
			chunk.DocumentName = docNames[i]
		}
		if i < len(ordinals) {
			chunk.Ordinal = int(ordinals[i])
		}
		if i < len(texts) {
			chunk.Text = texts[i]
		}
		chunks = append(chunks, chunk)
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Ordinal < chunks[j].Ordinal
	})

	span.SetAttributes(attribute.Int("result_count", len(chunks)))
	return chunks, nil
}

// escapeExpr 转义布尔表达式字符串字面量，防止文档名里的引号破坏过滤条件
func escapeExpr(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"doc-rag-api/internal/application/rag"
	"doc-rag-api/internal/domain/repository"
	"doc-rag-api/internal/infrastructure/extract"
	"doc-rag-api/internal/infrastructure/persistence/redis"
	"doc-rag-api/internal/interfaces/http/dto"
	"doc-rag-api/pkg/logger"
)

const documentChunkFetchLimit = 1000

// DocumentHandler 文档处理器
type DocumentHandler struct {
	indexer *rag.Indexer
	deleter *rag.Deleter
	docs    repository.DocumentRepository
	vector  rag.VectorStore
	cache   *redis.Cache
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(
	indexer *rag.Indexer,
	deleter *rag.Deleter,
	docs repository.DocumentRepository,
	vector rag.VectorStore,
	cache *redis.Cache,
) *DocumentHandler {
	return &DocumentHandler{
		indexer: indexer,
		deleter: deleter,
		docs:    docs,
		vector:  vector,
		cache:   cache,
	}
}

// Ingest 摄取文档
// @Summary 摄取文档
// @Description 上传纯文本或 PDF 文件，切分、向量化并入库
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "文档名"
// @Param text formData string false "纯文本内容"
// @Param file formData file false "PDF 文件"
// @Success 201 {object} dto.Response[dto.IngestDocumentResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/documents [post]
func (h *DocumentHandler) Ingest(c *gin.Context) {
	ctx := c.Request.Context()

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		dto.BadRequest(c, "document name is required")
		return
	}

	text := c.PostForm("text")
	sourceKind := "text"

	if file, err := c.FormFile("file"); err == nil && file != nil {
		f, err := file.Open()
		if err != nil {
			dto.BadRequest(c, "failed to open uploaded file")
			return
		}
		defer f.Close()

		extracted, err := extract.ExtractPDFText(f)
		if err != nil {
			respondError(c, err, "failed to extract pdf text")
			return
		}
		text = extracted
		sourceKind = "pdf"
	}

	if strings.TrimSpace(text) == "" {
		dto.BadRequest(c, "either text or a pdf file with extractable text is required")
		return
	}

	result, err := h.indexer.Ingest(ctx, rag.IngestInput{
		DocumentName: name,
		Text:         text,
		SourceKind:   sourceKind,
	})
	if err != nil {
		respondError(c, err, "failed to ingest document")
		return
	}

	if err := h.cache.InvalidateDashboard(ctx); err != nil {
		logger.Warn(ctx, "failed to invalidate dashboard cache", "error", err.Error())
	}

	dto.Created(c, dto.IngestDocumentResponse{
		DocumentID:   result.DocumentID,
		DocumentName: name,
		ChunkCount:   result.ChunkCount,
		Summary:      result.Summary,
	})
}

// List 文档列表
// @Summary 文档列表
// @Description 列出全部已摄取文档的元数据
// @Tags Documents
// @Produce json
// @Success 200 {object} dto.Response[dto.ListDocumentsResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	docs, err := h.docs.List(ctx)
	if err != nil {
		respondError(c, err, "failed to list documents")
		return
	}

	dto.Success(c, dto.ToListDocumentsResponse(docs))
}

// Get 文档详情
// @Summary 文档详情
// @Description 获取文档元数据与全部分块内容
// @Tags Documents
// @Produce json
// @Param name path string true "文档名"
// @Success 200 {object} dto.Response[dto.DocumentDetailResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/documents/{name} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	doc, err := h.docs.GetByName(ctx, name)
	if err != nil {
		respondError(c, err, "failed to get document")
		return
	}
	if doc == nil {
		dto.NotFound(c, "document not found")
		return
	}

	chunks, err := h.vector.FetchChunks(ctx, name, documentChunkFetchLimit)
	if err != nil {
		respondError(c, err, "failed to fetch document chunks")
		return
	}

	resp := dto.DocumentDetailResponse{
		DocumentResponse: dto.ToDocumentResponse(doc),
		Chunks:           make([]dto.ChunkResponse, 0, len(chunks)),
	}
	for _, chunk := range chunks {
		resp.Chunks = append(resp.Chunks, dto.ChunkResponse{
			VectorID: chunk.ID,
			Ordinal:  chunk.Ordinal,
			Text:     chunk.Text,
		})
	}

	dto.Success(c, resp)
}

// Delete 删除文档
// @Summary 删除文档
// @Description 删除文档元数据与全部向量分块
// @Tags Documents
// @Produce json
// @Param name path string true "文档名"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/documents/{name} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	if err := h.deleter.Delete(ctx, name); err != nil {
		respondError(c, err, "failed to delete document")
		return
	}

	if err := h.cache.InvalidateDashboard(ctx); err != nil {
		logger.Warn(ctx, "failed to invalidate dashboard cache", "error", err.Error())
	}

	dto.NoContent(c)
}

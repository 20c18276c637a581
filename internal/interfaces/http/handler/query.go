// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"doc-rag-api/internal/application/rag"
	"doc-rag-api/internal/interfaces/http/dto"
)

// QueryHandler 查询处理器
type QueryHandler struct {
	engine *rag.Engine
}

// NewQueryHandler 创建查询处理器
func NewQueryHandler(engine *rag.Engine) *QueryHandler {
	return &QueryHandler{engine: engine}
}

// Query 检索增强问答
// @Summary 检索增强问答
// @Description 检索相关文档分块并合成回答，可选限定聊天室范围
// @Tags Queries
// @Accept json
// @Produce json
// @Param body body dto.QueryRequest true "查询请求"
// @Success 200 {object} dto.Response[dto.QueryResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/queries [post]
func (h *QueryHandler) Query(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	outcome, err := h.engine.Answer(ctx, rag.QueryInput{
		Query:      req.Query,
		ChatRoomID: req.ChatRoomID,
		TopK:       req.TopK,
	})
	if err != nil {
		respondError(c, err, "failed to answer query")
		return
	}

	dto.Success(c, dto.ToQueryResponse(outcome))
}

// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"doc-rag-api/internal/domain/entity"
	"doc-rag-api/internal/domain/repository"
	"doc-rag-api/internal/infrastructure/persistence/redis"
	"doc-rag-api/internal/interfaces/http/dto"
	"doc-rag-api/pkg/logger"
)

const chatMessageFetchLimit = 200

// ChatRoomHandler 聊天室处理器
type ChatRoomHandler struct {
	rooms    repository.ChatRoomRepository
	messages repository.ChatMessageRepository
	cache    *redis.Cache
}

// NewChatRoomHandler 创建聊天室处理器
func NewChatRoomHandler(
	rooms repository.ChatRoomRepository,
	messages repository.ChatMessageRepository,
	cache *redis.Cache,
) *ChatRoomHandler {
	return &ChatRoomHandler{
		rooms:    rooms,
		messages: messages,
		cache:    cache,
	}
}

// Create 创建聊天室
// @Summary 创建聊天室
// @Description 创建聊天室，contexts 限定可检索的文档集合，创建后不可修改
// @Tags ChatRooms
// @Accept json
// @Produce json
// @Param body body dto.CreateChatRoomRequest true "聊天室信息"
// @Success 201 {object} dto.Response[dto.ChatRoomResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/chat-rooms [post]
func (h *ChatRoomHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateChatRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	provider := entity.Provider(strings.TrimSpace(req.Provider))
	switch provider {
	case "", entity.ProviderOpenAI, entity.ProviderGemini:
	default:
		dto.BadRequest(c, "unsupported provider: "+req.Provider)
		return
	}
	if provider == "" {
		provider = entity.ProviderOpenAI
	}

	contexts := make([]string, 0, len(req.Contexts))
	for _, name := range req.Contexts {
		name = strings.TrimSpace(name)
		if name != "" {
			contexts = append(contexts, name)
		}
	}

	room := &entity.ChatRoom{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Contexts: contexts,
		Provider: provider,
		IsActive: true,
	}

	if err := h.rooms.Create(ctx, room); err != nil {
		respondError(c, err, "failed to create chat room")
		return
	}

	if err := h.cache.InvalidateDashboard(ctx); err != nil {
		logger.Warn(ctx, "failed to invalidate dashboard cache", "error", err.Error())
	}

	dto.Created(c, dto.ToChatRoomResponse(room))
}

// List 聊天室列表
// @Summary 聊天室列表
// @Description 列出全部未停用的聊天室
// @Tags ChatRooms
// @Produce json
// @Success 200 {object} dto.Response[dto.ListChatRoomsResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/chat-rooms [get]
func (h *ChatRoomHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	rooms, err := h.rooms.ListActive(ctx)
	if err != nil {
		respondError(c, err, "failed to list chat rooms")
		return
	}

	dto.Success(c, dto.ToListChatRoomsResponse(rooms))
}

// Get 聊天室详情
// @Summary 聊天室详情
// @Description 获取指定聊天室，含已停用的
// @Tags ChatRooms
// @Produce json
// @Param id path string true "聊天室 ID"
// @Success 200 {object} dto.Response[dto.ChatRoomResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/chat-rooms/{id} [get]
func (h *ChatRoomHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	room, err := h.rooms.GetByID(ctx, id)
	if err != nil {
		respondError(c, err, "failed to get chat room")
		return
	}
	if room == nil {
		dto.NotFound(c, "chat room not found")
		return
	}

	dto.Success(c, dto.ToChatRoomResponse(room))
}

// Messages 聊天室历史消息
// @Summary 聊天室历史消息
// @Description 按时间升序返回聊天室内的问答记录，已停用聊天室的历史仍可读
// @Tags ChatRooms
// @Produce json
// @Param id path string true "聊天室 ID"
// @Success 200 {object} dto.Response[dto.ListChatMessagesResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/chat-rooms/{id}/messages [get]
func (h *ChatRoomHandler) Messages(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	room, err := h.rooms.GetByID(ctx, id)
	if err != nil {
		respondError(c, err, "failed to get chat room")
		return
	}
	if room == nil {
		dto.NotFound(c, "chat room not found")
		return
	}

	messages, err := h.messages.ListByRoom(ctx, id, chatMessageFetchLimit)
	if err != nil {
		respondError(c, err, "failed to list chat messages")
		return
	}

	dto.Success(c, dto.ToListChatMessagesResponse(messages))
}

// Deactivate 停用聊天室
// @Summary 停用聊天室
// @Description 软删除：标记停用并保留历史消息
// @Tags ChatRooms
// @Produce json
// @Param id path string true "聊天室 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/chat-rooms/{id} [delete]
func (h *ChatRoomHandler) Deactivate(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	deactivated, err := h.rooms.Deactivate(ctx, id)
	if err != nil {
		respondError(c, err, "failed to deactivate chat room")
		return
	}
	if !deactivated {
		dto.NotFound(c, "chat room not found or already inactive")
		return
	}

	if err := h.cache.InvalidateDashboard(ctx); err != nil {
		logger.Warn(ctx, "failed to invalidate dashboard cache", "error", err.Error())
	}

	dto.NoContent(c)
}

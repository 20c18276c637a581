// Package handler 提供 HTTP 请求处理器
package handler

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"doc-rag-api/internal/domain/repository"
	"doc-rag-api/internal/infrastructure/persistence/redis"
	"doc-rag-api/internal/interfaces/http/dto"
)

const dashboardCacheTTL = 60 * time.Second

// DashboardHandler 看板统计处理器
type DashboardHandler struct {
	docs    repository.DocumentRepository
	rooms   repository.ChatRoomRepository
	queries repository.QueryRepository
	cache   *redis.Cache
}

// NewDashboardHandler 创建看板统计处理器
func NewDashboardHandler(
	docs repository.DocumentRepository,
	rooms repository.ChatRoomRepository,
	queries repository.QueryRepository,
	cache *redis.Cache,
) *DashboardHandler {
	return &DashboardHandler{
		docs:    docs,
		rooms:   rooms,
		queries: queries,
		cache:   cache,
	}
}

// Stats 看板统计
// @Summary 看板统计
// @Description 文档、聊天室与查询的汇总计数，带 60 秒缓存
// @Tags Dashboard
// @Produce json
// @Success 200 {object} dto.Response[dto.DashboardResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	raw, err := h.cache.GetOrLoadSafe(ctx, redis.DashboardCacheKey, dashboardCacheTTL, func() (interface{}, error) {
		return h.loadStats(c)
	})
	if err != nil {
		respondError(c, err, "failed to load dashboard stats")
		return
	}

	var resp dto.DashboardResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		respondError(c, err, "failed to decode dashboard stats")
		return
	}

	dto.Success(c, resp)
}

func (h *DashboardHandler) loadStats(c *gin.Context) (*dto.DashboardResponse, error) {
	ctx := c.Request.Context()

	docCount, err := h.docs.Count(ctx)
	if err != nil {
		return nil, err
	}
	bySource, err := h.docs.CountBySourceKind(ctx)
	if err != nil {
		return nil, err
	}
	roomCount, err := h.rooms.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	queryCount, err := h.queries.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		DocumentCount:       docCount,
		DocumentsBySource:   bySource,
		ActiveChatRoomCount: roomCount,
		QueryCount:          queryCount,
	}, nil
}

// Package dto 提供 HTTP 层数据传输对象
package dto

// DashboardResponse 看板统计响应
type DashboardResponse struct {
	DocumentCount       int64            `json:"document_count"`
	DocumentsBySource   map[string]int64 `json:"documents_by_source"`
	ActiveChatRoomCount int64            `json:"active_chat_room_count"`
	QueryCount          int64            `json:"query_count"`
}

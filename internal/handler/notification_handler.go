package handler

import (
	"pro-network/internal/service"
	"pro-network/pkg/jwt"
	"pro-network/pkg/response"

	"github.com/gin-gonic/gin"
)

// NotificationHandler 通知处理器
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler 创建NotificationHandler实例
func NewNotificationHandler(s *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: s}
}

// List 分页获取通知
func (h *NotificationHandler) List(c *gin.Context) {
	userID := jwt.GetUserID(c)
	page := queryPage(c)

	rows, total, err := h.service.List(userID, page)
	if err != nil {
		handleError(c, err)
		return
	}
	unread, err := h.service.UnreadCount(userID)
	if err != nil {
		handleError(c, err)
		return
	}

	list := make([]*response.NotificationInfo, 0, len(rows))
	for _, n := range rows {
		list = append(list, response.FilterNotificationInfo(n))
	}
	response.Success(c, gin.H{
		"notifications": list,
		"page":          page,
		"total":         total,
		"unread_count":  unread,
	})
}

// UnreadCount 未读通知数量
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(jwt.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"unread_count": count})
}

// MarkRead 标记单条通知已读
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := paramID(c, "notification_id")
	if !ok {
		return
	}
	if err := h.service.MarkRead(jwt.GetUserID(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已标记为已读", nil)
}

// MarkAllRead 标记全部通知已读
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.service.MarkAllRead(jwt.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "全部标记为已读", gin.H{"marked": n})
}

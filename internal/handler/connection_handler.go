package handler

import (
	"pro-network/internal/service"
	"pro-network/pkg/jwt"
	"pro-network/pkg/response"

	"github.com/gin-gonic/gin"
)

// ConnectionHandler 连接请求处理器
type ConnectionHandler struct {
	service *service.ConnectionService
}

// NewConnectionHandler 创建ConnectionHandler实例
func NewConnectionHandler(s *service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{service: s}
}

var sendMessages = map[service.SendOutcome]string{
	service.SendOutcomeSent:             "连接请求已发送",
	service.SendOutcomeResent:           "连接请求已重新发送",
	service.SendOutcomeAlreadySent:      "已向该用户发送过连接请求",
	service.SendOutcomeAlreadyReceived:  "对方已向你发送连接请求，请接受或拒绝",
	service.SendOutcomeAlreadyConnected: "你们已经建立连接",
}

// connectionItem 列表项：连接记录ID与对方用户
type connectionItem struct {
	ID        uint               `json:"id"`
	User      *response.UserInfo `json:"user"`
	Status    string             `json:"status"`
	CreatedAt string             `json:"created_at"`
}

func toItems(views []service.ConnectionView) []connectionItem {
	items := make([]connectionItem, 0, len(views))
	for _, v := range views {
		items = append(items, connectionItem{
			ID:        v.ConnectionID,
			User:      response.FilterUserInfo(v.User),
			Status:    string(v.Status),
			CreatedAt: v.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return items
}

// List 我的连接、发出与收到的待处理请求
func (h *ConnectionHandler) List(c *gin.Context) {
	userID := jwt.GetUserID(c)

	accepted, err := h.service.ListAccepted(userID)
	if err != nil {
		handleError(c, err)
		return
	}
	sent, err := h.service.ListPendingSent(userID)
	if err != nil {
		handleError(c, err)
		return
	}
	received, err := h.service.ListPendingReceived(userID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{
		"connections":      toItems(accepted),
		"pending_sent":     toItems(sent),
		"pending_received": toItems(received),
	})
}

// Search 搜索可以建立连接的用户
func (h *ConnectionHandler) Search(c *gin.Context) {
	users, err := h.service.SearchCandidates(c.Query("q"), jwt.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"query": c.Query("q"),
		"users": response.FilterUserList(users),
	})
}

// Send 发送连接请求
func (h *ConnectionHandler) Send(c *gin.Context) {
	targetID, ok := paramID(c, "target_id")
	if !ok {
		return
	}
	res, err := h.service.SendRequest(jwt.GetUserID(c), targetID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMessage(c, sendMessages[res.Outcome], gin.H{
		"outcome":    res.Outcome,
		"connection": response.FilterConnectionInfo(res.Connection),
	})
}

// Accept 接受连接请求
func (h *ConnectionHandler) Accept(c *gin.Context) {
	id, ok := paramID(c, "request_id")
	if !ok {
		return
	}
	conn, err := h.service.Accept(jwt.GetUserID(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已接受连接请求", response.FilterConnectionInfo(conn))
}

// Reject 拒绝连接请求
func (h *ConnectionHandler) Reject(c *gin.Context) {
	id, ok := paramID(c, "request_id")
	if !ok {
		return
	}
	conn, err := h.service.Reject(jwt.GetUserID(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已拒绝连接请求", response.FilterConnectionInfo(conn))
}

// Cancel 撤回连接请求
func (h *ConnectionHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "request_id")
	if !ok {
		return
	}
	if err := h.service.Cancel(jwt.GetUserID(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "连接请求已撤回", nil)
}

// Remove 删除已建立的连接
func (h *ConnectionHandler) Remove(c *gin.Context) {
	id, ok := paramID(c, "request_id")
	if !ok {
		return
	}
	removed, err := h.service.Remove(jwt.GetUserID(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	msg := "连接已删除"
	if !removed {
		msg = "无需删除"
	}
	response.SuccessWithMessage(c, msg, gin.H{"removed": removed})
}

package websocket

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pro-network/config"
	"pro-network/pkg/jwt"
	"pro-network/pkg/logger"
	"pro-network/pkg/redis"
	"pro-network/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// Hooks 连接生命周期回调，均可为空
type Hooks struct {
	// Welcome 连接建立后推送给客户端的首条消息（如未读数），返回 nil 不推送
	Welcome func(userID uint) []byte
	// Touch 连接建立与心跳时调用（刷新最近活跃时间）
	Touch func(userID uint)
	// AckRead 客户端确认通知已读
	AckRead func(userID, notificationID uint)
}

// Handler WebSocket 入口
type Handler struct {
	jwt     *jwt.JWTService
	cfg     config.WebSocketConfig
	manager *Manager
	hooks   Hooks
}

// NewHandler 创建WebSocket处理器
func NewHandler(jwtSvc *jwt.JWTService, cfg config.WebSocketConfig, manager *Manager, hooks Hooks) *Handler {
	return &Handler{jwt: jwtSvc, cfg: cfg, manager: manager, hooks: hooks}
}

// clientMessage 客户端上行消息
type clientMessage struct {
	Type           string      `json:"type"`
	NotificationID json.Number `json:"notification_id"`
}

// Serve Gin路由处理函数
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Sec-WebSocket-Protocol"), "Bearer ")
	}
	if token == "" {
		response.Unauthorized(c, "缺少token")
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Unauthorized(c, "token无效或已过期")
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		response.Unauthorized(c, "token无效")
		return
	}

	// 回显子协议，避免客户端提示 "Server sent no subprotocol"
	respHeader := http.Header{}
	if protocol := c.GetHeader("Sec-WebSocket-Protocol"); protocol != "" {
		respHeader.Set("Sec-WebSocket-Protocol", protocol)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		logger.Warn("WebSocket升级失败", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	client := NewClient(userID, conn)
	h.manager.AddClient(client)
	h.markOnline(userID)
	logger.Info("WebSocket连接建立", zap.Uint("user_id", userID))

	defer func() {
		if h.manager.RemoveClient(client) {
			if redis.Enabled() {
				_ = redis.RemoveUserPresence(userID)
			}
		}
		_ = conn.Close()
		logger.Info("WebSocket连接关闭", zap.Uint("user_id", userID))
	}()

	go h.writePump(client)

	if h.hooks.Welcome != nil {
		if msg := h.hooks.Welcome(userID); msg != nil {
			h.manager.SendToUser(userID, msg)
		}
	}

	h.readPump(client)
}

// writePump 写协程：发送消息并定时发送ping心跳，通道关闭或写失败时关闭连接
func (h *Handler) writePump(client *Client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = client.Conn.Close()
	}()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				_ = client.Conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
				return
			}
			_ = client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

// readPump 读协程（接收心跳/客户端消息），超时未收到任何读事件则断开
func (h *Handler) readPump(client *Client) {
	conn := client.Conn
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "heartbeat":
			h.markOnline(client.UserID)
			h.manager.SendToUser(client.UserID, []byte(`{"type":"pong"}`))
		case "ack_read":
			id, err := strconv.ParseUint(msg.NotificationID.String(), 10, 64)
			if err == nil && id > 0 && h.hooks.AckRead != nil {
				h.hooks.AckRead(client.UserID, uint(id))
			}
		}
	}
}

func (h *Handler) markOnline(userID uint) {
	if redis.Enabled() {
		if err := redis.RefreshUserPresence(userID); err != nil {
			logger.Warn("刷新在线状态失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	if h.hooks.Touch != nil {
		h.hooks.Touch(userID)
	}
}

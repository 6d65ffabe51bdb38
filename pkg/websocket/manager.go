package websocket

import (
	"sync"

	"pro-network/pkg/metrics"

	"github.com/gorilla/websocket"
)

// Client 代表一个WebSocket连接的用户
// Send 为待发送消息的缓冲通道，由写协程消费
type Client struct {
	UserID uint
	Conn   *websocket.Conn
	Send   chan []byte
}

// NewClient 创建客户端
func NewClient(userID uint, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}
}

// Manager 管理所有在线用户的WebSocket连接（每个用户保留最新的一个连接）
type Manager struct {
	clients map[uint]*Client
	lock    sync.RWMutex
}

var manager = NewManager()

// NewManager 创建连接管理器
func NewManager() *Manager {
	return &Manager{clients: make(map[uint]*Client)}
}

// GetManager 获取全局WebSocket管理器
func GetManager() *Manager {
	return manager
}

// AddClient 添加新连接，同一用户的旧连接被替换并关闭发送通道
func (m *Manager) AddClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if old, ok := m.clients[client.UserID]; ok && old != client {
		close(old.Send)
	} else if !ok {
		metrics.WebSocketClients.Inc()
	}
	m.clients[client.UserID] = client
}

// RemoveClient 移除连接，仅当 client 仍是该用户当前的连接时生效
func (m *Manager) RemoveClient(client *Client) bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	c, ok := m.clients[client.UserID]
	if !ok || c != client {
		return false
	}
	close(c.Send)
	delete(m.clients, client.UserID)
	metrics.WebSocketClients.Dec()
	return true
}

// SendToUser 推送消息给指定用户，用户不在线或缓冲已满时丢弃
// 通知已持久化到数据库，离线用户上线后通过接口拉取
func (m *Manager) SendToUser(userID uint, msg []byte) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	client, ok := m.clients[userID]
	if !ok {
		return false
	}
	select {
	case client.Send <- msg:
		return true
	default:
		return false
	}
}

// IsOnline 判断用户是否在线
func (m *Manager) IsOnline(userID uint) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.clients[userID]
	return ok
}

// Count 当前连接数
func (m *Manager) Count() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.clients)
}

package model

import (
	"time"
)

// ConnectionStatus 连接请求状态
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "PENDING"
	ConnectionAccepted ConnectionStatus = "ACCEPTED"
	ConnectionRejected ConnectionStatus = "REJECTED"
	ConnectionBlocked  ConnectionStatus = "BLOCKED"
)

// Connection 两个用户之间的连接请求
// FromUserID 为发起方，ToUserID 为接收方
// PairLow/PairHigh 为两个用户ID的较小/较大值，唯一索引保证每对用户最多一条记录（不区分方向）
// 不使用软删除：删除后该用户对必须可以重新建立请求
type Connection struct {
	ID         uint             `gorm:"primaryKey"`
	FromUserID uint             `gorm:"not null;uniqueIndex:idx_connection_direction;index;comment:发起方ID"`
	ToUserID   uint             `gorm:"not null;uniqueIndex:idx_connection_direction;index;comment:接收方ID"`
	PairLow    uint             `gorm:"not null;uniqueIndex:idx_connection_pair;comment:较小用户ID"`
	PairHigh   uint             `gorm:"not null;uniqueIndex:idx_connection_pair;comment:较大用户ID"`
	Status     ConnectionStatus `gorm:"type:varchar(20);not null;default:'PENDING';index;comment:状态"`
	CreatedAt  time.Time        `gorm:"comment:创建时间"`
	UpdatedAt  time.Time        `gorm:"comment:更新时间"`

	FromUser *User `gorm:"foreignKey:FromUserID;constraint:OnDelete:CASCADE"`
	ToUser   *User `gorm:"foreignKey:ToUserID;constraint:OnDelete:CASCADE"`
}

func (Connection) TableName() string { return "connection" }

// NewConnection 创建待处理的连接请求，并填充无方向的用户对
func NewConnection(from, to uint) *Connection {
	low, high := OrderedPair(from, to)
	return &Connection{
		FromUserID: from,
		ToUserID:   to,
		PairLow:    low,
		PairHigh:   high,
		Status:     ConnectionPending,
	}
}

// OrderedPair 返回 (较小ID, 较大ID)
func OrderedPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// Involves 用户是否为该连接的任一方
func (c *Connection) Involves(userID uint) bool {
	return c.FromUserID == userID || c.ToUserID == userID
}

// Counterpart 返回连接中另一方的用户ID
func (c *Connection) Counterpart(userID uint) uint {
	if c.FromUserID == userID {
		return c.ToUserID
	}
	return c.FromUserID
}

package model

import (
	"time"
)

// NotificationType 通知类型
type NotificationType string

const (
	NotificationLike               NotificationType = "LIKE"
	NotificationComment            NotificationType = "COMMENT"
	NotificationConnectionRequest  NotificationType = "CONNECTION_REQUEST"
	NotificationConnectionAccepted NotificationType = "CONNECTION_ACCEPTED"
	NotificationProfileVisit       NotificationType = "PROFILE_VISIT"
	NotificationPostShare          NotificationType = "POST_SHARE"
)

// Notification 站内通知
// PostID/CommentID 可选，用于关联触发通知的对象
type Notification struct {
	ID         uint             `gorm:"primaryKey"`
	ToUserID   uint             `gorm:"not null;index:idx_notification_to_read;comment:接收者ID"`
	FromUserID uint             `gorm:"not null;index;comment:触发者ID"`
	Type       NotificationType `gorm:"type:varchar(20);not null;comment:通知类型"`
	Message    string           `gorm:"type:text;comment:通知内容"`
	IsRead     bool             `gorm:"default:false;index:idx_notification_to_read;comment:是否已读"`
	PostID     *uint            `gorm:"index;comment:关联动态ID"`
	CommentID  *uint            `gorm:"index;comment:关联评论ID"`
	CreatedAt  time.Time        `gorm:"index;comment:创建时间"`

	ToUser   *User    `gorm:"foreignKey:ToUserID;constraint:OnDelete:CASCADE"`
	FromUser *User    `gorm:"foreignKey:FromUserID;constraint:OnDelete:CASCADE"`
	Post     *Post    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Comment  *Comment `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
}

func (Notification) TableName() string { return "notification" }

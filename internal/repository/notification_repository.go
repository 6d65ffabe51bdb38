package repository

import (
	"pro-network/internal/model"

	"gorm.io/gorm"
)

// NotificationRepository 通知数据仓储
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建NotificationRepository实例
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create 创建通知
func (r *NotificationRepository) Create(n *model.Notification) error {
	return r.db.Create(n).Error
}

// ListForUser 分页获取用户通知（新到旧）
func (r *NotificationRepository) ListForUser(userID uint, limit, offset int) ([]*model.Notification, error) {
	var rows []*model.Notification
	err := r.db.Preload("FromUser").
		Where("to_user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

// MarkRead 标记单条通知已读，返回受影响行数（已读或不属于该用户时为0）
func (r *NotificationRepository) MarkRead(id, userID uint) (int64, error) {
	res := r.db.Model(&model.Notification{}).
		Where("id = ? AND to_user_id = ? AND is_read = ?", id, userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// Exists 通知是否属于该用户
func (r *NotificationRepository) Exists(id, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).Where("id = ? AND to_user_id = ?", id, userID).Count(&count).Error
	return count > 0, err
}

// MarkAllRead 标记用户全部通知已读
func (r *NotificationRepository) MarkAllRead(userID uint) (int64, error) {
	res := r.db.Model(&model.Notification{}).
		Where("to_user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// CountUnread 用户未读通知数量
func (r *NotificationRepository) CountUnread(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("to_user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// CountForUser 用户通知总数
func (r *NotificationRepository) CountForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).Where("to_user_id = ?", userID).Count(&count).Error
	return count, err
}

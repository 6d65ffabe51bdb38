package service

import (
	"encoding/json"
	"fmt"

	"pro-network/internal/model"
	"pro-network/internal/repository"
	"pro-network/pkg/logger"
	"pro-network/pkg/metrics"
	"pro-network/pkg/redis"
	"pro-network/pkg/response"

	"go.uber.org/zap"
)

// NotificationEvent 需要通知的事件
type NotificationEvent struct {
	To        uint
	From      uint
	Type      model.NotificationType
	PostID    *uint
	CommentID *uint
}

// Notifier 通知发送方，核心操作提交后调用，失败只记录日志
type Notifier interface {
	Notify(ev NotificationEvent)
}

// NopNotifier 不发送任何通知
type NopNotifier struct{}

// Notify 忽略事件
func (NopNotifier) Notify(NotificationEvent) {}

// Pusher 实时推送通道（WebSocket）
type Pusher interface {
	SendToUser(userID uint, msg []byte) bool
}

// NotificationService 通知服务
type NotificationService struct {
	repo     *repository.NotificationRepository
	users    *repository.UserRepository
	pusher   Pusher
	pageSize int
}

// NewNotificationService 创建通知服务，pusher 可为 nil
func NewNotificationService(repo *repository.NotificationRepository, users *repository.UserRepository, pusher Pusher, pageSize int) *NotificationService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &NotificationService{repo: repo, users: users, pusher: pusher, pageSize: pageSize}
}

// Notify 持久化通知并推送给在线用户，不会给自己发通知
func (s *NotificationService) Notify(ev NotificationEvent) {
	if _, err := s.Create(ev); err != nil {
		logger.Error("创建通知失败",
			zap.Uint("to_user_id", ev.To),
			zap.Uint("from_user_id", ev.From),
			zap.String("type", string(ev.Type)),
			zap.Error(err))
	}
}

// Create 创建通知，ev.To == ev.From 时返回 nil, nil
func (s *NotificationService) Create(ev NotificationEvent) (*model.Notification, error) {
	if ev.To == ev.From {
		return nil, nil
	}

	from, err := s.users.GetByID(ev.From)
	if err != nil {
		return nil, fmt.Errorf("加载通知发送者失败: %w", notFound(err))
	}

	n := &model.Notification{
		ToUserID:   ev.To,
		FromUserID: ev.From,
		Type:       ev.Type,
		Message:    notificationMessage(ev.Type, from.DisplayName()),
		PostID:     ev.PostID,
		CommentID:  ev.CommentID,
	}
	if err := s.repo.Create(n); err != nil {
		return nil, err
	}
	n.FromUser = from
	metrics.NotificationsCreated.WithLabelValues(string(ev.Type)).Inc()

	if redis.Enabled() {
		if err := redis.IncrementUnreadCount(ev.To); err != nil {
			logger.Warn("增加未读通知计数失败", zap.Uint("user_id", ev.To), zap.Error(err))
		}
	}
	s.push(n)
	return n, nil
}

func (s *NotificationService) push(n *model.Notification) {
	if s.pusher == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": response.FilterNotificationInfo(n),
	})
	if err != nil {
		return
	}
	s.pusher.SendToUser(n.ToUserID, payload)
}

func notificationMessage(t model.NotificationType, from string) string {
	switch t {
	case model.NotificationLike:
		return fmt.Sprintf("%s 赞了你的动态", from)
	case model.NotificationComment:
		return fmt.Sprintf("%s 评论了你的动态", from)
	case model.NotificationConnectionRequest:
		return fmt.Sprintf("%s 向你发送了连接请求", from)
	case model.NotificationConnectionAccepted:
		return fmt.Sprintf("%s 接受了你的连接请求", from)
	case model.NotificationProfileVisit:
		return fmt.Sprintf("%s 查看了你的主页", from)
	case model.NotificationPostShare:
		return fmt.Sprintf("%s 分享了你的动态", from)
	}
	return from
}

// List 分页获取通知（page 从1开始）
func (s *NotificationService) List(userID uint, page int) ([]*model.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	total, err := s.repo.CountForUser(userID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.repo.ListForUser(userID, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MarkRead 标记通知已读，通知不属于该用户时返回 ErrNotFound，重复标记无副作用
func (s *NotificationService) MarkRead(userID, id uint) error {
	rows, err := s.repo.MarkRead(id, userID)
	if err != nil {
		return err
	}
	if rows == 0 {
		ok, err := s.repo.Exists(id, userID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		return nil
	}
	if redis.Enabled() {
		if err := redis.DecrementUnreadCount(userID); err != nil {
			logger.Warn("减少未读通知计数失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// MarkAllRead 标记全部通知已读，返回本次标记的数量
func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	rows, err := s.repo.MarkAllRead(userID)
	if err != nil {
		return 0, err
	}
	if redis.Enabled() {
		if err := redis.ResetUnreadCount(userID); err != nil {
			logger.Warn("重置未读通知计数失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return rows, nil
}

// UnreadCount 未读通知数量，优先读取Redis计数，缺失时从数据库重建
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	if redis.Enabled() {
		count, err := redis.GetUnreadCount(userID)
		if err == nil && count >= 0 {
			return count, nil
		}
		if err != nil {
			logger.Warn("读取未读通知计数失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}

	count, err := s.repo.CountUnread(userID)
	if err != nil {
		return 0, err
	}
	if redis.Enabled() {
		_ = redis.SetUnreadCount(userID, count)
	}
	return count, nil
}

// WelcomeMessage WebSocket连接建立时推送的未读数消息
func (s *NotificationService) WelcomeMessage(userID uint) []byte {
	count, err := s.UnreadCount(userID)
	if err != nil {
		return nil
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"type":  "unread_count",
		"count": count,
	})
	return payload
}

// AckRead WebSocket 客户端确认已读
func (s *NotificationService) AckRead(userID, id uint) {
	if err := s.MarkRead(userID, id); err != nil && err != ErrNotFound {
		logger.Warn("确认通知已读失败", zap.Uint("user_id", userID), zap.Uint("notification_id", id), zap.Error(err))
	}
}

package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pro-network/internal/model"
	"pro-network/internal/repository"
	"pro-network/pkg/metrics"
)

// SendOutcome 发送连接请求的结果
type SendOutcome string

const (
	SendOutcomeSent             SendOutcome = "sent"
	SendOutcomeResent           SendOutcome = "resent"
	SendOutcomeAlreadySent      SendOutcome = "already_sent"
	SendOutcomeAlreadyReceived  SendOutcome = "already_received"
	SendOutcomeAlreadyConnected SendOutcome = "already_connected"
)

// Created 是否新建了待处理请求
func (o SendOutcome) Created() bool {
	return o == SendOutcomeSent || o == SendOutcomeResent
}

// SendResult 发送结果，Connection 为该用户对当前的连接记录
type SendResult struct {
	Connection *model.Connection
	Outcome    SendOutcome
}

// ConnectionView 列表中的一项：连接记录与对方用户
type ConnectionView struct {
	ConnectionID uint
	User         *model.User
	Status       model.ConnectionStatus
	CreatedAt    time.Time
}

// ConnectionService 连接请求状态机与关系查询
type ConnectionService struct {
	conns     *repository.ConnectionRepository
	users     *repository.UserRepository
	notifier  Notifier
	searchCap int
}

// NewConnectionService 创建连接服务，notifier 为 nil 时不发通知
func NewConnectionService(conns *repository.ConnectionRepository, users *repository.UserRepository, notifier Notifier, searchCap int) *ConnectionService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if searchCap <= 0 {
		searchCap = 20
	}
	return &ConnectionService{conns: conns, users: users, notifier: notifier, searchCap: searchCap}
}

// SendRequest 发送连接请求
// 唯一索引冲突或死锁说明并发请求已写入同一用户对，重新执行即可读到该记录
func (s *ConnectionService) SendRequest(senderID, targetID uint) (*SendResult, error) {
	if senderID == targetID {
		return nil, ErrSelfRequest
	}
	if _, err := s.users.GetByID(targetID); err != nil {
		return nil, notFound(err)
	}

	var (
		result *SendResult
		err    error
	)
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		result, err = s.sendOnce(senderID, targetID)
		if !retryableWrite(err) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, ErrBlocked) {
			metrics.ConnectionTransitions.WithLabelValues("blocked").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("发送连接请求失败: %w", err)
	}

	metrics.ConnectionTransitions.WithLabelValues(string(result.Outcome)).Inc()
	if result.Outcome.Created() {
		s.notifier.Notify(NotificationEvent{
			To:   targetID,
			From: senderID,
			Type: model.NotificationConnectionRequest,
		})
	}
	return result, nil
}

func (s *ConnectionService) sendOnce(senderID, targetID uint) (*SendResult, error) {
	var result *SendResult
	err := s.conns.Transaction(func(tx *repository.ConnectionRepository) error {
		existing, err := tx.FindByPair(senderID, targetID)
		if err != nil {
			return err
		}

		if existing == nil {
			c := model.NewConnection(senderID, targetID)
			if err := tx.Create(c); err != nil {
				return err
			}
			result = &SendResult{Connection: c, Outcome: SendOutcomeSent}
			return nil
		}

		switch existing.Status {
		case model.ConnectionPending:
			outcome := SendOutcomeAlreadyReceived
			if existing.FromUserID == senderID {
				outcome = SendOutcomeAlreadySent
			}
			result = &SendResult{Connection: existing, Outcome: outcome}
		case model.ConnectionAccepted:
			result = &SendResult{Connection: existing, Outcome: SendOutcomeAlreadyConnected}
		case model.ConnectionRejected:
			if err := tx.Delete(existing.ID); err != nil {
				return err
			}
			c := model.NewConnection(senderID, targetID)
			if err := tx.Create(c); err != nil {
				return err
			}
			result = &SendResult{Connection: c, Outcome: SendOutcomeResent}
		case model.ConnectionBlocked:
			return ErrBlocked
		default:
			return fmt.Errorf("连接 %d 状态未知: %q", existing.ID, existing.Status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Accept 接收方接受待处理请求
func (s *ConnectionService) Accept(recipientID, requestID uint) (*model.Connection, error) {
	c, err := s.respond(recipientID, requestID, model.ConnectionAccepted)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(NotificationEvent{
		To:   c.FromUserID,
		From: recipientID,
		Type: model.NotificationConnectionAccepted,
	})
	return c, nil
}

// Reject 接收方拒绝待处理请求
func (s *ConnectionService) Reject(recipientID, requestID uint) (*model.Connection, error) {
	return s.respond(recipientID, requestID, model.ConnectionRejected)
}

// respond 条件更新：记录必须存在、接收方匹配且仍为待处理，否则 ErrNotFound
func (s *ConnectionService) respond(recipientID, requestID uint, to model.ConnectionStatus) (*model.Connection, error) {
	var c *model.Connection
	err := s.conns.Transaction(func(tx *repository.ConnectionRepository) error {
		rows, err := tx.UpdateStatus(requestID, recipientID, model.ConnectionPending, to)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotFound
		}
		c, err = tx.GetByID(requestID)
		return err
	})
	if err != nil {
		return nil, notFound(err)
	}
	metrics.ConnectionTransitions.WithLabelValues(strings.ToLower(string(to))).Inc()
	return c, nil
}

// Cancel 发送方撤回待处理请求
func (s *ConnectionService) Cancel(senderID, requestID uint) error {
	err := s.conns.Transaction(func(tx *repository.ConnectionRepository) error {
		c, err := tx.GetPendingFrom(requestID, senderID)
		if err != nil {
			return err
		}
		return tx.Delete(c.ID)
	})
	if err != nil {
		return notFound(err)
	}
	metrics.ConnectionTransitions.WithLabelValues("cancelled").Inc()
	return nil
}

// Remove 任一方删除已建立的连接
// 连接不存在或未接受时返回 ErrNotFound；操作者不是连接的一方时不做任何事，返回 false
func (s *ConnectionService) Remove(actorID, requestID uint) (bool, error) {
	removed := false
	err := s.conns.Transaction(func(tx *repository.ConnectionRepository) error {
		c, err := tx.GetByIDAndStatus(requestID, model.ConnectionAccepted)
		if err != nil {
			return err
		}
		if !c.Involves(actorID) {
			return nil
		}
		if err := tx.Delete(c.ID); err != nil {
			return err
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, notFound(err)
	}
	if removed {
		metrics.ConnectionTransitions.WithLabelValues("removed").Inc()
	}
	return removed, nil
}

// ListAccepted 已建立的连接，返回对方用户
func (s *ConnectionService) ListAccepted(userID uint) ([]ConnectionView, error) {
	rows, err := s.conns.ListAccepted(userID)
	if err != nil {
		return nil, err
	}
	return toViews(rows, userID), nil
}

// ListPendingSent 我发出的待处理请求
func (s *ConnectionService) ListPendingSent(userID uint) ([]ConnectionView, error) {
	rows, err := s.conns.ListPendingSent(userID)
	if err != nil {
		return nil, err
	}
	return toViews(rows, userID), nil
}

// ListPendingReceived 我收到的待处理请求
func (s *ConnectionService) ListPendingReceived(userID uint) ([]ConnectionView, error) {
	rows, err := s.conns.ListPendingReceived(userID)
	if err != nil {
		return nil, err
	}
	return toViews(rows, userID), nil
}

func toViews(rows []*model.Connection, userID uint) []ConnectionView {
	views := make([]ConnectionView, 0, len(rows))
	for _, c := range rows {
		other := c.ToUser
		if c.ToUserID == userID {
			other = c.FromUser
		}
		views = append(views, ConnectionView{
			ConnectionID: c.ID,
			User:         other,
			Status:       c.Status,
			CreatedAt:    c.CreatedAt,
		})
	}
	return views
}

// Relation 两个用户之间的连接记录，没有时返回 nil
func (s *ConnectionService) Relation(a, b uint) (*model.Connection, error) {
	if a == b {
		return nil, nil
	}
	return s.conns.FindByPair(a, b)
}

// SearchCandidates 搜索可以发送请求的用户
// 排除自己以及与调用者处于待处理、已接受、已屏蔽关系的用户，排除后再截取前 searchCap 个
func (s *ConnectionService) SearchCandidates(query string, callerID uint) ([]*model.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*model.User{}, nil
	}

	related, err := s.conns.RelatedUserIDs(callerID,
		model.ConnectionPending, model.ConnectionAccepted, model.ConnectionBlocked)
	if err != nil {
		return nil, err
	}

	filter := CandidateFilter{
		Query:      query,
		ExcludeIDs: append(related, callerID),
	}
	return s.users.Search(filter.Scope, s.searchCap)
}

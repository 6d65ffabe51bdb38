package repository

import (
	"errors"
	"fmt"
	"time"

	"pro-network/internal/model"
	dbPkg "pro-network/pkg/db"

	"gorm.io/gorm"
)

// ErrDuplicatePair 同一对用户存在多条连接记录（唯一索引被绕过）
var ErrDuplicatePair = errors.New("duplicate connection rows for user pair")

// ConnectionRepository 连接请求数据仓储
// 事务内创建的仓储（locking=true）读取单条记录时加行锁
type ConnectionRepository struct {
	db      *gorm.DB
	locking bool
}

// NewConnectionRepository 创建ConnectionRepository实例
func NewConnectionRepository(db *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// Transaction 在事务中执行 fn，fn 返回错误时回滚
func (r *ConnectionRepository) Transaction(fn func(txRepo *ConnectionRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ConnectionRepository{db: tx, locking: true})
	})
}

func (r *ConnectionRepository) reader() *gorm.DB {
	if r.locking {
		return dbPkg.ForUpdate(r.db)
	}
	return r.db
}

// FindByPair 查找两个用户之间的连接（不区分方向），不存在时返回 nil
func (r *ConnectionRepository) FindByPair(a, b uint) (*model.Connection, error) {
	var rows []*model.Connection
	err := r.reader().
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)", a, b, b, a).
		Limit(2).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return rows[0], nil
	default:
		return nil, fmt.Errorf("%w: users %d and %d", ErrDuplicatePair, a, b)
	}
}

// Create 创建连接请求
func (r *ConnectionRepository) Create(c *model.Connection) error {
	return r.db.Create(c).Error
}

// Delete 物理删除连接记录
func (r *ConnectionRepository) Delete(id uint) error {
	return r.db.Delete(&model.Connection{}, id).Error
}

// GetByID 根据ID获取连接（含双方用户）
func (r *ConnectionRepository) GetByID(id uint) (*model.Connection, error) {
	var c model.Connection
	err := r.db.Preload("FromUser").Preload("ToUser").First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetPendingFor 获取发给 recipient 的待处理请求
func (r *ConnectionRepository) GetPendingFor(id, recipientID uint) (*model.Connection, error) {
	var c model.Connection
	err := r.reader().
		Where("id = ? AND to_user_id = ? AND status = ?", id, recipientID, model.ConnectionPending).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetPendingFrom 获取 sender 发出的待处理请求
func (r *ConnectionRepository) GetPendingFrom(id, senderID uint) (*model.Connection, error) {
	var c model.Connection
	err := r.reader().
		Where("id = ? AND from_user_id = ? AND status = ?", id, senderID, model.ConnectionPending).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByIDAndStatus 获取指定状态的连接
func (r *ConnectionRepository) GetByIDAndStatus(id uint, status model.ConnectionStatus) (*model.Connection, error) {
	var c model.Connection
	err := r.reader().Where("id = ? AND status = ?", id, status).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateStatus 仅当记录仍为 from 状态且接收方匹配时更新状态，返回受影响行数
func (r *ConnectionRepository) UpdateStatus(id, recipientID uint, from, to model.ConnectionStatus) (int64, error) {
	res := r.db.Model(&model.Connection{}).
		Where("id = ? AND to_user_id = ? AND status = ?", id, recipientID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

// ListAccepted 用户参与的全部已接受连接
func (r *ConnectionRepository) ListAccepted(userID uint) ([]*model.Connection, error) {
	var rows []*model.Connection
	err := r.db.Preload("FromUser.Profile").Preload("ToUser.Profile").
		Where("(from_user_id = ? OR to_user_id = ?) AND status = ?", userID, userID, model.ConnectionAccepted).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// ListPendingSent 用户发出的待处理请求
func (r *ConnectionRepository) ListPendingSent(userID uint) ([]*model.Connection, error) {
	var rows []*model.Connection
	err := r.db.Preload("ToUser.Profile").
		Where("from_user_id = ? AND status = ?", userID, model.ConnectionPending).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// ListPendingReceived 用户收到的待处理请求
func (r *ConnectionRepository) ListPendingReceived(userID uint) ([]*model.Connection, error) {
	var rows []*model.Connection
	err := r.db.Preload("FromUser.Profile").
		Where("to_user_id = ? AND status = ?", userID, model.ConnectionPending).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// RelatedUserIDs 与用户处于指定状态之一的对方用户ID（任一方向）
func (r *ConnectionRepository) RelatedUserIDs(userID uint, statuses ...model.ConnectionStatus) ([]uint, error) {
	var rows []*model.Connection
	err := r.db.Select("from_user_id", "to_user_id").
		Where("(from_user_id = ? OR to_user_id = ?) AND status IN ?", userID, userID, statuses).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(rows))
	for _, c := range rows {
		ids = append(ids, c.Counterpart(userID))
	}
	return ids, nil
}

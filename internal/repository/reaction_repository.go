package repository

import (
	"time"

	"pro-network/internal/model"
	dbPkg "pro-network/pkg/db"

	"gorm.io/gorm"
)

// KindCount 某种反应的数量
type KindCount struct {
	Kind  model.ReactionKind `json:"kind"`
	Count int64              `json:"count"`
}

// ReactionRepository 反应数据仓储
type ReactionRepository struct {
	db      *gorm.DB
	locking bool
}

// NewReactionRepository 创建ReactionRepository实例
func NewReactionRepository(db *gorm.DB) *ReactionRepository {
	return &ReactionRepository{db: db}
}

// Transaction 在事务中执行 fn
func (r *ReactionRepository) Transaction(fn func(txRepo *ReactionRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ReactionRepository{db: tx, locking: true})
	})
}

// FindByUserAndPost 查找用户对动态的反应，不存在时返回 nil
func (r *ReactionRepository) FindByUserAndPost(userID, postID uint) (*model.Reaction, error) {
	q := r.db
	if r.locking {
		q = dbPkg.ForUpdate(q)
	}
	var rows []*model.Reaction
	if err := q.Where("user_id = ? AND post_id = ?", userID, postID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Create 创建反应
func (r *ReactionRepository) Create(reaction *model.Reaction) error {
	return r.db.Create(reaction).Error
}

// Delete 删除反应
func (r *ReactionRepository) Delete(id uint) error {
	return r.db.Delete(&model.Reaction{}, id).Error
}

// UpdateKind 修改反应类型
func (r *ReactionRepository) UpdateKind(id uint, kind model.ReactionKind) error {
	return r.db.Model(&model.Reaction{}).Where("id = ?", id).Updates(map[string]interface{}{
		"kind":       kind,
		"updated_at": time.Now(),
	}).Error
}

// CountByPost 动态各类反应数量
func (r *ReactionRepository) CountByPost(postID uint) ([]KindCount, error) {
	var counts []KindCount
	err := r.db.Model(&model.Reaction{}).
		Select("kind, COUNT(*) AS count").
		Where("post_id = ?", postID).
		Group("kind").
		Scan(&counts).Error
	return counts, err
}

// CountByPosts 批量统计多条动态的反应数量
func (r *ReactionRepository) CountByPosts(postIDs []uint) (map[uint][]KindCount, error) {
	result := make(map[uint][]KindCount, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		PostID uint
		Kind   model.ReactionKind
		Count  int64
	}
	err := r.db.Model(&model.Reaction{}).
		Select("post_id, kind, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id, kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.PostID] = append(result[row.PostID], KindCount{Kind: row.Kind, Count: row.Count})
	}
	return result, nil
}

// KindsByUser 用户对一组动态的反应类型
func (r *ReactionRepository) KindsByUser(userID uint, postIDs []uint) (map[uint]model.ReactionKind, error) {
	result := make(map[uint]model.ReactionKind, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	var rows []*model.Reaction
	err := r.db.Select("post_id", "kind").
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.PostID] = row.Kind
	}
	return result, nil
}

// CountRows 用户对动态的反应记录数（用于一致性检查）
func (r *ReactionRepository) CountRows(userID, postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Reaction{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	return count, err
}

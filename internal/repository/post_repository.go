package repository

import (
	"pro-network/internal/model"

	"gorm.io/gorm"
)

// PostRepository 动态与评论数据仓储
type PostRepository struct {
	db *gorm.DB
}

// NewPostRepository 创建PostRepository实例
func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create 创建动态
func (r *PostRepository) Create(post *model.Post) error {
	return r.db.Create(post).Error
}

// GetByID 根据ID获取动态
func (r *PostRepository) GetByID(id uint) (*model.Post, error) {
	var p model.Post
	if err := r.db.Preload("Author").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateContent 作者修改动态内容，返回受影响行数
func (r *PostRepository) UpdateContent(id, authorID uint, content string) (int64, error) {
	res := r.db.Model(&model.Post{}).
		Where("id = ? AND author_id = ?", id, authorID).
		Update("content", content)
	return res.RowsAffected, res.Error
}

// Delete 作者删除动态，评论与反应由外键级联删除
func (r *PostRepository) Delete(id, authorID uint) (int64, error) {
	res := r.db.Where("id = ? AND author_id = ?", id, authorID).Delete(&model.Post{})
	return res.RowsAffected, res.Error
}

// List 按时间倒序分页获取动态（含作者与评论）
func (r *PostRepository) List(limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.
		Preload("Author.Profile").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Preload("Comments.Author").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// Count 动态总数
func (r *PostRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Post{}).Count(&count).Error
	return count, err
}

// CreateComment 创建评论
func (r *PostRepository) CreateComment(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

// DeleteComment 作者删除评论，返回受影响行数
func (r *PostRepository) DeleteComment(id, authorID uint) (int64, error) {
	res := r.db.Where("id = ? AND author_id = ?", id, authorID).Delete(&model.Comment{})
	return res.RowsAffected, res.Error
}

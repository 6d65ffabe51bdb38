package repository

import (
	"time"

	"pro-network/internal/model"

	"gorm.io/gorm"
)

// UserRepository 用户与资料数据仓储
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建UserRepository实例
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Transaction 在事务中执行 fn
func (r *UserRepository) Transaction(fn func(txRepo *UserRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&UserRepository{db: tx})
	})
}

// Create 创建用户（携带 Profile 时一并创建）
func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// GetByID 根据ID获取用户（含资料）
func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	var u model.User
	if err := r.db.Preload("Profile").First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsernameOrEmail 登录时按用户名或邮箱查找
func (r *UserRepository) GetByUsernameOrEmail(identifier string) (*model.User, error) {
	var u model.User
	if err := r.db.Preload("Profile").Where("username = ? OR email = ?", identifier, identifier).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ExistsByUsername 用户名是否已被占用
func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// ExistsByEmail 邮箱是否已被其他用户占用（excludeID 为0时不排除）
func (r *UserRepository) ExistsByEmail(email string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.Model(&model.User{}).Where("email = ?", email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// UpdateAccount 更新用户姓名与邮箱
func (r *UserRepository) UpdateAccount(id uint, firstName, lastName, email string) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"first_name": firstName,
		"last_name":  lastName,
		"email":      email,
	}).Error
}

// UpdateBio 更新个人简介（资料不存在时创建）
func (r *UserRepository) UpdateBio(userID uint, bio string) error {
	res := r.db.Model(&model.Profile{}).Where("user_id = ?", userID).Update("bio", bio)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.db.Create(&model.Profile{UserID: userID, Bio: bio, LastActive: time.Now()}).Error
	}
	return nil
}

// TouchLastActive 刷新最近活跃时间
func (r *UserRepository) TouchLastActive(userID uint) error {
	return r.db.Model(&model.Profile{}).Where("user_id = ?", userID).Update("last_active", time.Now()).Error
}

// Delete 删除用户，关联数据由外键级联删除
func (r *UserRepository) Delete(id uint) error {
	return r.db.Delete(&model.User{}, id).Error
}

// Count 用户总数
func (r *UserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).Count(&count).Error
	return count, err
}

// ListExcept 获取除指定用户外的前 limit 个用户（侧边栏推荐）
func (r *UserRepository) ListExcept(userID uint, limit int) ([]*model.User, error) {
	var users []*model.User
	err := r.db.Preload("Profile").
		Where("id <> ?", userID).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// ListByIDs 批量获取用户
func (r *UserRepository) ListByIDs(ids []uint) ([]*model.User, error) {
	var users []*model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.Preload("Profile").Where("id IN ?", ids).Order("id ASC").Find(&users).Error
	return users, err
}

// Search 按给定条件搜索用户，scope 负责拼接过滤条件
func (r *UserRepository) Search(scope func(*gorm.DB) *gorm.DB, limit int) ([]*model.User, error) {
	var users []*model.User
	err := r.db.Model(&model.User{}).
		Scopes(scope).
		Preload("Profile").
		Order("`user`.id ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

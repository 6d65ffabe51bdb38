package repository

import (
	"errors"

	"pro-network/internal/model"

	"gorm.io/gorm"
)

// ProfileRepository 技能与工作经历数据仓储
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建ProfileRepository实例
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetOrCreateSkill 按名称获取技能，不存在时创建
func (r *ProfileRepository) GetOrCreateSkill(name string) (*model.Skill, error) {
	var skill model.Skill
	err := r.db.Where("name = ?", name).First(&skill).Error
	if err == nil {
		return &skill, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	skill = model.Skill{Name: name}
	if err := r.db.Create(&skill).Error; err != nil {
		// 并发创建同名技能时重新读取
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := r.db.Where("name = ?", name).First(&skill).Error; err != nil {
				return nil, err
			}
			return &skill, nil
		}
		return nil, err
	}
	return &skill, nil
}

// AddUserSkill 为用户添加技能
func (r *ProfileRepository) AddUserSkill(us *model.UserSkill) error {
	return r.db.Create(us).Error
}

// DeleteUserSkill 删除用户技能，返回受影响行数
func (r *ProfileRepository) DeleteUserSkill(id, userID uint) (int64, error) {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.UserSkill{})
	return res.RowsAffected, res.Error
}

// ListUserSkills 用户技能列表（按技能名称排序）
func (r *ProfileRepository) ListUserSkills(userID uint) ([]*model.UserSkill, error) {
	var rows []*model.UserSkill
	err := r.db.Preload("Skill").
		Joins("JOIN skill ON skill.id = user_skill.skill_id").
		Where("user_skill.user_id = ?", userID).
		Order("skill.name ASC").
		Find(&rows).Error
	return rows, err
}

// CreateExperience 创建工作经历
func (r *ProfileRepository) CreateExperience(exp *model.Experience) error {
	return r.db.Create(exp).Error
}

// GetExperience 获取用户自己的工作经历
func (r *ProfileRepository) GetExperience(id, userID uint) (*model.Experience, error) {
	var exp model.Experience
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&exp).Error; err != nil {
		return nil, err
	}
	return &exp, nil
}

// SaveExperience 保存工作经历全部字段
func (r *ProfileRepository) SaveExperience(exp *model.Experience) error {
	return r.db.Save(exp).Error
}

// DeleteExperience 删除工作经历，返回受影响行数
func (r *ProfileRepository) DeleteExperience(id, userID uint) (int64, error) {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Experience{})
	return res.RowsAffected, res.Error
}

// ListExperiences 用户工作经历（开始日期倒序）
func (r *ProfileRepository) ListExperiences(userID uint) ([]*model.Experience, error) {
	var rows []*model.Experience
	err := r.db.Where("user_id = ?", userID).
		Order("start_date DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

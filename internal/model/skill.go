package model

import (
	"time"
)

// SkillLevel 技能熟练度
type SkillLevel string

const (
	SkillLevelBeginner     SkillLevel = "BEGINNER"
	SkillLevelIntermediate SkillLevel = "INTERMEDIATE"
	SkillLevelAdvanced     SkillLevel = "ADVANCED"
	SkillLevelExpert       SkillLevel = "EXPERT"
)

// Valid 是否为已定义的熟练度
func (l SkillLevel) Valid() bool {
	switch l {
	case SkillLevelBeginner, SkillLevelIntermediate, SkillLevelAdvanced, SkillLevelExpert:
		return true
	}
	return false
}

// Skill 技能字典，名称全局唯一
type Skill struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex;comment:技能名称"`
}

func (Skill) TableName() string { return "skill" }

// UserSkill 用户掌握的技能，(user_id, skill_id) 唯一
type UserSkill struct {
	ID      uint       `gorm:"primaryKey"`
	UserID  uint       `gorm:"not null;uniqueIndex:idx_user_skill;comment:用户ID"`
	SkillID uint       `gorm:"not null;uniqueIndex:idx_user_skill;comment:技能ID"`
	Level   SkillLevel `gorm:"type:varchar(20);not null;default:'BEGINNER';comment:熟练度"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Skill *Skill `gorm:"foreignKey:SkillID;constraint:OnDelete:CASCADE"`
}

func (UserSkill) TableName() string { return "user_skill" }

// Experience 工作经历
// IsCurrent 为 true 时 EndDate 为空
type Experience struct {
	ID          uint       `gorm:"primaryKey"`
	UserID      uint       `gorm:"not null;index;comment:用户ID"`
	Company     string     `gorm:"type:varchar(200);not null;comment:公司"`
	Position    string     `gorm:"type:varchar(200);not null;comment:职位"`
	Description string     `gorm:"type:text;comment:描述"`
	StartDate   time.Time  `gorm:"type:date;not null;comment:开始日期"`
	EndDate     *time.Time `gorm:"type:date;comment:结束日期"`
	IsCurrent   bool       `gorm:"default:false;comment:是否当前职位"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Experience) TableName() string { return "experience" }

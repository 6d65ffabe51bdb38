package model

import (
	"time"
)

// User 用户模型
// 索引与唯一约束：用户名唯一、邮箱唯一
// 说明：密码仅存储哈希（PasswordHash），不存储明文
// 删除用户时，资料、技能、经历、动态、评论、反应、连接与通知级联删除

type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"type:varchar(150);not null;uniqueIndex;comment:用户名"`
	Email        string    `gorm:"type:varchar(254);not null;uniqueIndex;comment:邮箱"`
	PasswordHash string    `gorm:"type:varchar(255);not null;comment:密码哈希"`
	FirstName    string    `gorm:"type:varchar(30);comment:名"`
	LastName     string    `gorm:"type:varchar(30);comment:姓"`
	CreatedAt    time.Time `gorm:"comment:创建时间"`
	UpdatedAt    time.Time `gorm:"comment:更新时间"`

	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名（全局配置使用单数表名）
func (User) TableName() string { return "user" }

// DisplayName 优先显示全名，没有全名时使用用户名
func (u *User) DisplayName() string {
	full := u.FirstName
	if u.LastName != "" {
		if full != "" {
			full += " "
		}
		full += u.LastName
	}
	if full == "" {
		return u.Username
	}
	return full
}

// Profile 用户资料（与用户一对一）
type Profile struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"not null;uniqueIndex;comment:用户ID"`
	Bio        string    `gorm:"type:text;comment:个人简介"`
	LastActive time.Time `gorm:"comment:最近活跃时间"`
	CreatedAt  time.Time `gorm:"comment:创建时间"`
	UpdatedAt  time.Time `gorm:"comment:更新时间"`
}

func (Profile) TableName() string { return "profile" }

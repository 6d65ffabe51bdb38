package model

import (
	"strings"
	"time"
)

// Post 动态
type Post struct {
	ID        uint      `gorm:"primaryKey"`
	AuthorID  uint      `gorm:"not null;index;comment:作者ID"`
	Content   string    `gorm:"type:text;not null;comment:内容"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`

	Author   *User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Comments []*Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

func (Post) TableName() string { return "post" }

// Comment 动态评论
type Comment struct {
	ID        uint      `gorm:"primaryKey"`
	PostID    uint      `gorm:"not null;index;comment:动态ID"`
	AuthorID  uint      `gorm:"not null;index;comment:作者ID"`
	Content   string    `gorm:"type:text;not null;comment:内容"`
	CreatedAt time.Time `gorm:"comment:创建时间"`

	Post   *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

func (Comment) TableName() string { return "comment" }

// ReactionKind 反应类型
type ReactionKind string

const (
	ReactionLike  ReactionKind = "LIKE"
	ReactionLove  ReactionKind = "LOVE"
	ReactionFunny ReactionKind = "FUNNY"
	ReactionWow   ReactionKind = "WOW"
	ReactionSad   ReactionKind = "SAD"
	ReactionAngry ReactionKind = "ANGRY"
)

// ReactionKinds 全部反应类型，顺序即展示顺序（计数相同时的排序依据）
var ReactionKinds = []ReactionKind{
	ReactionLike,
	ReactionLove,
	ReactionFunny,
	ReactionWow,
	ReactionSad,
	ReactionAngry,
}

// ParseReactionKind 解析反应类型（不区分大小写），空字符串视为 LIKE
func ParseReactionKind(s string) (ReactionKind, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ReactionLike, true
	}
	for _, k := range ReactionKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Rank 反应类型在 ReactionKinds 中的位置，未知类型排在最后
func (k ReactionKind) Rank() int {
	for i, kind := range ReactionKinds {
		if kind == k {
			return i
		}
	}
	return len(ReactionKinds)
}

// Reaction 用户对动态的反应，(user_id, post_id) 唯一
type Reaction struct {
	ID        uint         `gorm:"primaryKey"`
	UserID    uint         `gorm:"not null;uniqueIndex:idx_reaction_user_post;comment:用户ID"`
	PostID    uint         `gorm:"not null;uniqueIndex:idx_reaction_user_post;index;comment:动态ID"`
	Kind      ReactionKind `gorm:"type:varchar(10);not null;comment:反应类型"`
	CreatedAt time.Time    `gorm:"comment:创建时间"`
	UpdatedAt time.Time    `gorm:"comment:更新时间"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Post *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

func (Reaction) TableName() string { return "reaction" }

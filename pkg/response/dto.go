package response

import (
	"pro-network/internal/model"
)

const (
	timeLayout = "2006-01-02 15:04:05"
	dateLayout = "2006-01-02"
)

// UserInfo 用户公开信息（不含邮箱与密码）
type UserInfo struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	LastActive  string `json:"last_active,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// SelfInfo 当前登录用户信息
type SelfInfo struct {
	*UserInfo
	Email string `json:"email"`
}

// FilterUserInfo 过滤用户信息，隐藏敏感字段
func FilterUserInfo(user *model.User) *UserInfo {
	if user == nil {
		return nil
	}

	info := &UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		DisplayName: user.DisplayName(),
		CreatedAt:   user.CreatedAt.Format(timeLayout),
	}
	if user.Profile != nil {
		info.Bio = user.Profile.Bio
		if !user.Profile.LastActive.IsZero() {
			info.LastActive = user.Profile.LastActive.Format(timeLayout)
		}
	}
	return info
}

// FilterSelfInfo 当前用户信息（包含邮箱）
func FilterSelfInfo(user *model.User) *SelfInfo {
	if user == nil {
		return nil
	}
	return &SelfInfo{UserInfo: FilterUserInfo(user), Email: user.Email}
}

// FilterUserList 批量转换用户信息
func FilterUserList(users []*model.User) []*UserInfo {
	list := make([]*UserInfo, 0, len(users))
	for _, u := range users {
		list = append(list, FilterUserInfo(u))
	}
	return list
}

// LoginResponse 登录/注册响应
type LoginResponse struct {
	User        *SelfInfo `json:"user"`
	AccessToken string    `json:"access_token"`
}

// ConnectionInfo 连接请求信息
type ConnectionInfo struct {
	ID         uint   `json:"id"`
	FromUserID uint   `json:"from_user_id"`
	ToUserID   uint   `json:"to_user_id"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// FilterConnectionInfo 转换连接请求信息
func FilterConnectionInfo(c *model.Connection) *ConnectionInfo {
	if c == nil {
		return nil
	}
	return &ConnectionInfo{
		ID:         c.ID,
		FromUserID: c.FromUserID,
		ToUserID:   c.ToUserID,
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt.Format(timeLayout),
		UpdatedAt:  c.UpdatedAt.Format(timeLayout),
	}
}

// CommentInfo 评论信息
type CommentInfo struct {
	ID        uint      `json:"id"`
	PostID    uint      `json:"post_id"`
	Author    *UserInfo `json:"author,omitempty"`
	Content   string    `json:"content"`
	CreatedAt string    `json:"created_at"`
}

// FilterCommentInfo 转换评论信息
func FilterCommentInfo(c *model.Comment) *CommentInfo {
	if c == nil {
		return nil
	}
	return &CommentInfo{
		ID:        c.ID,
		PostID:    c.PostID,
		Author:    FilterUserInfo(c.Author),
		Content:   c.Content,
		CreatedAt: c.CreatedAt.Format(timeLayout),
	}
}

// PostInfo 动态信息
type PostInfo struct {
	ID        uint           `json:"id"`
	Author    *UserInfo      `json:"author,omitempty"`
	Content   string         `json:"content"`
	Comments  []*CommentInfo `json:"comments"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

// FilterPostInfo 转换动态信息
func FilterPostInfo(p *model.Post) *PostInfo {
	if p == nil {
		return nil
	}
	comments := make([]*CommentInfo, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, FilterCommentInfo(c))
	}
	return &PostInfo{
		ID:        p.ID,
		Author:    FilterUserInfo(p.Author),
		Content:   p.Content,
		Comments:  comments,
		CreatedAt: p.CreatedAt.Format(timeLayout),
		UpdatedAt: p.UpdatedAt.Format(timeLayout),
	}
}

// NotificationInfo 通知信息
type NotificationInfo struct {
	ID        uint      `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	From      *UserInfo `json:"from,omitempty"`
	PostID    *uint     `json:"post_id,omitempty"`
	CommentID *uint     `json:"comment_id,omitempty"`
	CreatedAt string    `json:"created_at"`
}

// FilterNotificationInfo 转换通知信息
func FilterNotificationInfo(n *model.Notification) *NotificationInfo {
	if n == nil {
		return nil
	}
	return &NotificationInfo{
		ID:        n.ID,
		Type:      string(n.Type),
		Message:   n.Message,
		IsRead:    n.IsRead,
		From:      FilterUserInfo(n.FromUser),
		PostID:    n.PostID,
		CommentID: n.CommentID,
		CreatedAt: n.CreatedAt.Format(timeLayout),
	}
}

// SkillInfo 用户技能
type SkillInfo struct {
	ID      uint   `json:"id"`
	SkillID uint   `json:"skill_id"`
	Name    string `json:"name"`
	Level   string `json:"level"`
}

// FilterSkillInfo 转换用户技能
func FilterSkillInfo(us *model.UserSkill) *SkillInfo {
	if us == nil {
		return nil
	}
	info := &SkillInfo{
		ID:      us.ID,
		SkillID: us.SkillID,
		Level:   string(us.Level),
	}
	if us.Skill != nil {
		info.Name = us.Skill.Name
	}
	return info
}

// ExperienceInfo 工作经历
type ExperienceInfo struct {
	ID          uint    `json:"id"`
	Company     string  `json:"company"`
	Position    string  `json:"position"`
	Description string  `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
	IsCurrent   bool    `json:"is_current"`
}

// FilterExperienceInfo 转换工作经历
func FilterExperienceInfo(e *model.Experience) *ExperienceInfo {
	if e == nil {
		return nil
	}
	info := &ExperienceInfo{
		ID:          e.ID,
		Company:     e.Company,
		Position:    e.Position,
		Description: e.Description,
		StartDate:   e.StartDate.Format(dateLayout),
		IsCurrent:   e.IsCurrent,
	}
	if e.EndDate != nil {
		end := e.EndDate.Format(dateLayout)
		info.EndDate = &end
	}
	return info
}

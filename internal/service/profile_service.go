package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"pro-network/internal/model"
	"pro-network/internal/repository"
	"pro-network/pkg/redis"

	"gorm.io/gorm"
)

const (
	maxSkillNameLen = 100
	maxCompanyLen   = 200
)

// ProfileView 用户主页
// Connection 为查看者与该用户之间的连接记录，查看自己或没有记录时为 nil
type ProfileView struct {
	User        *model.User
	Skills      []*model.UserSkill
	Experiences []*model.Experience
	Connection  *model.Connection
	Online      bool
	IsSelf      bool
}

// ExperienceInput 工作经历参数
type ExperienceInput struct {
	Company     string
	Position    string
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	IsCurrent   bool
}

// ProfileService 用户主页、技能与工作经历
type ProfileService struct {
	users       *repository.UserRepository
	profiles    *repository.ProfileRepository
	connections *ConnectionService
}

// NewProfileService 创建资料服务
func NewProfileService(users *repository.UserRepository, profiles *repository.ProfileRepository, connections *ConnectionService) *ProfileService {
	return &ProfileService{users: users, profiles: profiles, connections: connections}
}

// GetProfile 查看用户主页
func (s *ProfileService) GetProfile(viewerID, targetID uint) (*ProfileView, error) {
	user, err := s.users.GetByID(targetID)
	if err != nil {
		return nil, notFound(err)
	}
	skills, err := s.profiles.ListUserSkills(targetID)
	if err != nil {
		return nil, err
	}
	experiences, err := s.profiles.ListExperiences(targetID)
	if err != nil {
		return nil, err
	}
	conn, err := s.connections.Relation(viewerID, targetID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		User:        user,
		Skills:      skills,
		Experiences: experiences,
		Connection:  conn,
		IsSelf:      viewerID == targetID,
	}
	if redis.Enabled() {
		view.Online, _ = redis.IsUserOnline(targetID)
	}
	return view, nil
}

// AddSkill 添加技能，技能名称全局去重，同一用户重复添加返回 ErrConflict
func (s *ProfileService) AddSkill(userID uint, name, level string) (*model.UserSkill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "技能名称不能为空")
	}
	if utf8.RuneCountInString(name) > maxSkillNameLen {
		return nil, invalid("name", "技能名称过长")
	}
	lvl := model.SkillLevel(strings.ToUpper(strings.TrimSpace(level)))
	if lvl == "" {
		lvl = model.SkillLevelBeginner
	}
	if !lvl.Valid() {
		return nil, invalid("level", fmt.Sprintf("未知的技能等级 %q", level))
	}

	skill, err := s.profiles.GetOrCreateSkill(name)
	if err != nil {
		return nil, err
	}
	us := &model.UserSkill{UserID: userID, SkillID: skill.ID, Level: lvl}
	if err := s.profiles.AddUserSkill(us); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: 技能已存在", ErrConflict)
		}
		return nil, err
	}
	us.Skill = skill
	return us, nil
}

// DeleteSkill 删除自己的技能
func (s *ProfileService) DeleteSkill(userID, userSkillID uint) error {
	rows, err := s.profiles.DeleteUserSkill(userSkillID, userID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeExperience(in *ExperienceInput) error {
	in.Company = strings.TrimSpace(in.Company)
	in.Position = strings.TrimSpace(in.Position)
	in.Description = strings.TrimSpace(in.Description)

	switch {
	case in.Company == "":
		return invalid("company", "公司不能为空")
	case utf8.RuneCountInString(in.Company) > maxCompanyLen:
		return invalid("company", "公司名称过长")
	case in.Position == "":
		return invalid("position", "职位不能为空")
	case utf8.RuneCountInString(in.Position) > maxCompanyLen:
		return invalid("position", "职位名称过长")
	case in.StartDate.IsZero():
		return invalid("start_date", "开始日期不能为空")
	}
	if in.IsCurrent {
		in.EndDate = nil
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return invalid("end_date", "结束日期不能早于开始日期")
	}
	return nil
}

// AddExperience 添加工作经历
func (s *ProfileService) AddExperience(userID uint, in ExperienceInput) (*model.Experience, error) {
	if err := normalizeExperience(&in); err != nil {
		return nil, err
	}
	exp := &model.Experience{
		UserID:      userID,
		Company:     in.Company,
		Position:    in.Position,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		IsCurrent:   in.IsCurrent,
	}
	if err := s.profiles.CreateExperience(exp); err != nil {
		return nil, err
	}
	return exp, nil
}

// EditExperience 修改自己的工作经历
func (s *ProfileService) EditExperience(userID, experienceID uint, in ExperienceInput) (*model.Experience, error) {
	if err := normalizeExperience(&in); err != nil {
		return nil, err
	}
	exp, err := s.profiles.GetExperience(experienceID, userID)
	if err != nil {
		return nil, notFound(err)
	}
	exp.Company = in.Company
	exp.Position = in.Position
	exp.Description = in.Description
	exp.StartDate = in.StartDate
	exp.EndDate = in.EndDate
	exp.IsCurrent = in.IsCurrent
	if err := s.profiles.SaveExperience(exp); err != nil {
		return nil, err
	}
	return exp, nil
}

// DeleteExperience 删除自己的工作经历
func (s *ProfileService) DeleteExperience(userID, experienceID uint) error {
	rows, err := s.profiles.DeleteExperience(experienceID, userID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

package handler

import (
	"time"

	"pro-network/internal/service"
	"pro-network/pkg/jwt"
	"pro-network/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProfileHandler 用户主页、技能与工作经历
type ProfileHandler struct {
	service *service.ProfileService
}

// NewProfileHandler 创建ProfileHandler实例
func NewProfileHandler(s *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: s}
}

// profileResponse 用户主页响应
type profileResponse struct {
	User        *response.UserInfo         `json:"user"`
	Skills      []*response.SkillInfo      `json:"skills"`
	Experiences []*response.ExperienceInfo `json:"experiences"`
	Connection  *response.ConnectionInfo   `json:"connection"`
	Online      bool                       `json:"online"`
	IsSelf      bool                       `json:"is_self"`
}

// GetProfile 查看用户主页
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	targetID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	view, err := h.service.GetProfile(jwt.GetUserID(c), targetID)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := &profileResponse{
		User:        response.FilterUserInfo(view.User),
		Skills:      make([]*response.SkillInfo, 0, len(view.Skills)),
		Experiences: make([]*response.ExperienceInfo, 0, len(view.Experiences)),
		Connection:  response.FilterConnectionInfo(view.Connection),
		Online:      view.Online,
		IsSelf:      view.IsSelf,
	}
	for _, s := range view.Skills {
		resp.Skills = append(resp.Skills, response.FilterSkillInfo(s))
	}
	for _, e := range view.Experiences {
		resp.Experiences = append(resp.Experiences, response.FilterExperienceInfo(e))
	}
	response.Success(c, resp)
}

// AddSkill 添加技能
func (h *ProfileHandler) AddSkill(c *gin.Context) {
	type req struct {
		Name  string `json:"name" binding:"required"`
		Level string `json:"level"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	us, err := h.service.AddSkill(jwt.GetUserID(c), r.Name, r.Level)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, response.FilterSkillInfo(us))
}

// DeleteSkill 删除技能
func (h *ProfileHandler) DeleteSkill(c *gin.Context) {
	id, ok := paramID(c, "skill_id")
	if !ok {
		return
	}
	if err := h.service.DeleteSkill(jwt.GetUserID(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "技能已删除", nil)
}

// experienceRequest 工作经历请求体，日期格式 2006-01-02
type experienceRequest struct {
	Company     string `json:"company" binding:"required"`
	Position    string `json:"position" binding:"required"`
	Description string `json:"description"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date"`
	IsCurrent   bool   `json:"is_current"`
}

func (r experienceRequest) toInput() (service.ExperienceInput, error) {
	in := service.ExperienceInput{
		Company:     r.Company,
		Position:    r.Position,
		Description: r.Description,
		IsCurrent:   r.IsCurrent,
	}
	start, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return in, &service.ValidationError{Field: "start_date", Message: "日期格式应为 YYYY-MM-DD"}
	}
	in.StartDate = start
	if r.EndDate != "" {
		end, err := time.Parse("2006-01-02", r.EndDate)
		if err != nil {
			return in, &service.ValidationError{Field: "end_date", Message: "日期格式应为 YYYY-MM-DD"}
		}
		in.EndDate = &end
	}
	return in, nil
}

func bindExperience(c *gin.Context) (service.ExperienceInput, bool) {
	var r experienceRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return service.ExperienceInput{}, false
	}
	in, err := r.toInput()
	if err != nil {
		handleError(c, err)
		return in, false
	}
	return in, true
}

// AddExperience 添加工作经历
func (h *ProfileHandler) AddExperience(c *gin.Context) {
	in, ok := bindExperience(c)
	if !ok {
		return
	}
	exp, err := h.service.AddExperience(jwt.GetUserID(c), in)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, response.FilterExperienceInfo(exp))
}

// EditExperience 修改工作经历
func (h *ProfileHandler) EditExperience(c *gin.Context) {
	id, ok := paramID(c, "experience_id")
	if !ok {
		return
	}
	in, ok := bindExperience(c)
	if !ok {
		return
	}
	exp, err := h.service.EditExperience(jwt.GetUserID(c), id, in)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, response.FilterExperienceInfo(exp))
}

// DeleteExperience 删除工作经历
func (h *ProfileHandler) DeleteExperience(c *gin.Context) {
	id, ok := paramID(c, "experience_id")
	if !ok {
		return
	}
	if err := h.service.DeleteExperience(jwt.GetUserID(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "工作经历已删除", nil)
}

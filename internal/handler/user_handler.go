package handler

import (
	"pro-network/internal/service"
	"pro-network/pkg/jwt"
	"pro-network/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	type req struct {
		Username  string `json:"username" binding:"required"`
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Email     string `json:"email" binding:"required"`
		Password  string `json:"password" binding:"required"`
		Password2 string `json:"password2" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Register(service.RegisterInput{
		Username:  r.Username,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
		Password2: r.Password2,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, &response.LoginResponse{
		User:        response.FilterSelfInfo(user),
		AccessToken: token,
	})
}

// Login 用户登录（用户名或邮箱）
func (h *UserHandler) Login(c *gin.Context) {
	type req struct {
		UsernameOrEmail string `json:"usernameOrEmail" binding:"required"`
		Password        string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Login(r.UsernameOrEmail, r.Password)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", &response.LoginResponse{
		User:        response.FilterSelfInfo(user),
		AccessToken: token,
	})
}

// Me 当前用户信息
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.service.Me(jwt.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, response.FilterSelfInfo(user))
}

// UpdateMe 修改当前用户资料
func (h *UserHandler) UpdateMe(c *gin.Context) {
	type req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email" binding:"required"`
		Bio       string `json:"bio"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.service.UpdateAccount(jwt.GetUserID(c), service.AccountInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Bio:       r.Bio,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "资料已更新", response.FilterSelfInfo(user))
}

// DeleteMe 删除当前账户
func (h *UserHandler) DeleteMe(c *gin.Context) {
	if err := h.service.DeleteAccount(jwt.GetUserID(c)); err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "账户已删除", nil)
}

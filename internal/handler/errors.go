package handler

import (
	"errors"
	"net/http"
	"strconv"

	"pro-network/internal/service"
	"pro-network/pkg/logger"
	"pro-network/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleError 将业务错误转换为统一响应
func handleError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(c, verr.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, "资源不存在")
	case errors.Is(err, service.ErrSelfRequest):
		response.BadRequest(c, "不能向自己发送连接请求")
	case errors.Is(err, service.ErrUnauthorized):
		response.Unauthorized(c, "用户名或密码错误")
	case errors.Is(err, service.ErrBlocked):
		response.Forbidden(c, "该连接已被屏蔽")
	case errors.Is(err, service.ErrConflict):
		response.Conflict(c, err.Error())
	default:
		logger.Error("请求处理失败",
			zap.String("path", c.FullPath()),
			zap.String("request_id", logger.GetRequestID(c)),
			zap.Error(err))
		response.ErrorWithDetails(c, http.StatusInternalServerError, "服务器内部错误", err)
	}
}

// paramID 解析路径中的ID参数，失败时直接写入400响应
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "无效的参数 "+name)
		return 0, false
	}
	return uint(id), true
}

// queryPage 解析分页参数 page，默认1
func queryPage(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

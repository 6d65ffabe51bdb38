package handler

import (
	"time"

	"pro-network/pkg/db"
	"pro-network/pkg/jwt"
	"pro-network/pkg/logger"
	"pro-network/pkg/metrics"
	"pro-network/pkg/redis"
	"pro-network/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handlers 全部HTTP处理器
type Handlers struct {
	Users         *UserHandler
	Profiles      *ProfileHandler
	Connections   *ConnectionHandler
	Posts         *PostHandler
	Notifications *NotificationHandler
	// WebSocket 可为空，为空时不注册 /ws
	WebSocket gin.HandlerFunc
}

// NewRouter 创建gin路由并注册中间件与全部接口
func NewRouter(h Handlers, jwtSvc *jwt.JWTService) *gin.Engine {
	router := gin.New()
	router.Use(logger.RequestIDMiddleware())
	router.Use(logger.RequestLogger())
	router.Use(logger.ErrorLoggerMiddleware())
	router.Use(metrics.Middleware())

	router.GET("/health", health)
	router.GET("/metrics", metrics.Handler())
	if h.WebSocket != nil {
		router.GET("/ws", h.WebSocket)
	}

	v1 := router.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			// 公开接口（无需认证）
			users.POST("/register", h.Users.Register)
			users.POST("/login", h.Users.Login)
		}

		auth := v1.Group("")
		auth.Use(jwtSvc.AuthMiddleware())
		{
			auth.GET("/users/me", h.Users.Me)
			auth.PUT("/users/me", h.Users.UpdateMe)
			auth.DELETE("/users/me", h.Users.DeleteMe)

			auth.GET("/profiles/:user_id", h.Profiles.GetProfile)
			auth.POST("/skills", h.Profiles.AddSkill)
			auth.DELETE("/skills/:skill_id", h.Profiles.DeleteSkill)
			auth.POST("/experiences", h.Profiles.AddExperience)
			auth.PUT("/experiences/:experience_id", h.Profiles.EditExperience)
			auth.DELETE("/experiences/:experience_id", h.Profiles.DeleteExperience)

			conns := auth.Group("/connections")
			{
				conns.GET("", h.Connections.List)
				conns.GET("/search", h.Connections.Search)
				conns.POST("/send/:target_id", h.Connections.Send)
				conns.POST("/accept/:request_id", h.Connections.Accept)
				conns.POST("/reject/:request_id", h.Connections.Reject)
				conns.POST("/cancel/:request_id", h.Connections.Cancel)
				conns.POST("/remove/:request_id", h.Connections.Remove)
			}

			posts := auth.Group("/posts")
			{
				posts.GET("", h.Posts.Feed)
				posts.POST("", h.Posts.Create)
				posts.PUT("/:post_id", h.Posts.Edit)
				posts.DELETE("/:post_id", h.Posts.Delete)
				posts.POST("/:post_id/comments", h.Posts.AddComment)
				posts.POST("/:post_id/reactions", h.Posts.ToggleReaction)
				posts.GET("/:post_id/reactions", h.Posts.Reactions)
			}
			auth.DELETE("/comments/:comment_id", h.Posts.DeleteComment)

			notifications := auth.Group("/notifications")
			{
				notifications.GET("", h.Notifications.List)
				notifications.GET("/unread-count", h.Notifications.UnreadCount)
				notifications.PUT("/:notification_id/read", h.Notifications.MarkRead)
				notifications.POST("/read-all", h.Notifications.MarkAllRead)
			}
		}
	}
	return router
}

// health 健康检查
func health(c *gin.Context) {
	status := "ok"
	if err := db.HealthCheck(); err != nil {
		status = "db-down"
	}
	redisStatus := "disabled"
	if redis.Enabled() {
		redisStatus = "ok"
		if err := redis.HealthCheck(); err != nil {
			redisStatus = "down"
		}
	}
	response.Success(c, gin.H{
		"status": status,
		"redis":  redisStatus,
		"time":   time.Now().Format(time.RFC3339),
	})
}

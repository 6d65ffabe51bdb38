package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pro-network/config"
	"pro-network/internal/handler"
	"pro-network/internal/repository"
	"pro-network/internal/service"
	dbPkg "pro-network/pkg/db"
	"pro-network/pkg/jwt"
	"pro-network/pkg/logger"
	"pro-network/pkg/redis"
	"pro-network/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== 职业社交网络服务启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Database),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
	)

	// 3. 初始化数据库连接
	db, err := dbPkg.InitDB(cfg.Database, cfg.Log.Level)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := dbPkg.AutoMigrate(db); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	log.Info("自动迁移完成")

	// 3.2 Redis 可选，连接失败时计数与在线状态退回数据库/内存
	if cfg.Redis.Enabled {
		if err := redis.InitRedis(cfg.Redis); err != nil {
			log.Warn("Redis连接失败，未读计数改用数据库", zap.Error(err))
		} else {
			log.Info("Redis连接成功")
			defer redis.Close()
		}
	}

	// 4. 初始化业务服务
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	wsManager := websocket.GetManager()

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)

	userSvc := service.NewUserService(userRepo, jwtSvc)
	notificationSvc := service.NewNotificationService(repository.NewNotificationRepository(db), userRepo, wsManager, cfg.Feed.PageSize)
	connectionSvc := service.NewConnectionService(repository.NewConnectionRepository(db), userRepo, notificationSvc, cfg.Search.MaxResults)
	reactionSvc := service.NewReactionService(repository.NewReactionRepository(db), postRepo, notificationSvc)
	postSvc := service.NewPostService(postRepo, userRepo, reactionSvc, notificationSvc, cfg.Feed.PageSize, cfg.Feed.SuggestedUsers)
	profileSvc := service.NewProfileService(userRepo, repository.NewProfileRepository(db), connectionSvc)

	wsHandler := websocket.NewHandler(jwtSvc, cfg.WebSocket, wsManager, websocket.Hooks{
		Welcome: notificationSvc.WelcomeMessage,
		Touch:   userSvc.Touch,
		AckRead: notificationSvc.AckRead,
	})

	// 5. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 6. 创建Gin路由
	router := handler.NewRouter(handler.Handlers{
		Users:         handler.NewUserHandler(userSvc),
		Profiles:      handler.NewProfileHandler(profileSvc),
		Connections:   handler.NewConnectionHandler(connectionSvc),
		Posts:         handler.NewPostHandler(postSvc, reactionSvc),
		Notifications: handler.NewNotificationHandler(notificationSvc),
		WebSocket:     wsHandler.Serve,
	}, jwtSvc)

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

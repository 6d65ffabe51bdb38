// 开发环境造数工具：通过业务服务生成用户、技能、经历、动态、评论、反应与连接请求
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"pro-network/config"
	"pro-network/internal/model"
	"pro-network/internal/repository"
	"pro-network/internal/service"
	dbPkg "pro-network/pkg/db"
	"pro-network/pkg/jwt"
	"pro-network/pkg/logger"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:  "seed",
		Usage: "生成开发用的假数据",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "users", Usage: "用户数", Value: 20},
			&cli.IntFlag{Name: "posts", Usage: "动态数", Value: 40},
			&cli.IntFlag{Name: "comments", Usage: "评论数", Value: 60},
			&cli.IntFlag{Name: "reactions", Usage: "反应切换次数", Value: 120},
			&cli.IntFlag{Name: "connections", Usage: "连接请求数", Value: 40},
			&cli.IntFlag{Name: "blocked", Usage: "额外标记为屏蔽的待处理请求数", Value: 0},
			&cli.StringFlag{Name: "password", Usage: "所有用户的登录密码", Value: "password123"},
			&cli.Int64Flag{Name: "seed", Usage: "随机种子，0 表示随机"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type seeder struct {
	db          *gorm.DB
	users       *service.UserService
	profiles    *service.ProfileService
	posts       *service.PostService
	reactions   *service.ReactionService
	connections *service.ConnectionService

	userIDs []uint
	postIDs []uint
}

func run(c *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger.InitLogger(cfg.Log)
	defer logger.Sync()

	if s := c.Int64("seed"); s != 0 {
		gofakeit.Seed(s)
	}

	db, err := dbPkg.InitDB(cfg.Database, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer dbPkg.CloseDB()
	if err := dbPkg.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	// 没有在线客户端，通知只落库
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), userRepo, nil, cfg.Feed.PageSize)
	connections := service.NewConnectionService(repository.NewConnectionRepository(db), userRepo, notifications, cfg.Search.MaxResults)
	reactions := service.NewReactionService(repository.NewReactionRepository(db), postRepo, notifications)

	s := &seeder{
		db:          db,
		users:       service.NewUserService(userRepo, jwt.NewJWTService(cfg.JWT)),
		profiles:    service.NewProfileService(userRepo, repository.NewProfileRepository(db), connections),
		posts:       service.NewPostService(postRepo, userRepo, reactions, notifications, cfg.Feed.PageSize, cfg.Feed.SuggestedUsers),
		reactions:   reactions,
		connections: connections,
	}

	if err := s.seedUsers(c.Int("users"), c.String("password")); err != nil {
		return err
	}
	if len(s.userIDs) < 2 {
		return errors.New("need at least 2 users")
	}
	s.seedPosts(c.Int("posts"))
	s.seedComments(c.Int("comments"))
	s.seedReactions(c.Int("reactions"))
	s.seedConnections(c.Int("connections"))
	if err := s.seedBlocked(c.Int("blocked")); err != nil {
		return err
	}

	logger.Info("造数完成",
		zap.Int("users", len(s.userIDs)),
		zap.Int("posts", len(s.postIDs)),
	)
	return nil
}

func (s *seeder) pickUser() uint { return s.userIDs[gofakeit.Number(0, len(s.userIDs)-1)] }
func (s *seeder) pickPost() uint { return s.postIDs[gofakeit.Number(0, len(s.postIDs)-1)] }

func (s *seeder) seedUsers(n int, password string) error {
	levels := []string{"beginner", "intermediate", "advanced", "expert"}
	for i := 0; i < n; i++ {
		username := fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i)
		user, _, err := s.users.Register(service.RegisterInput{
			Username:  username,
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Email:     username + "@example.com",
			Password:  password,
			Password2: password,
		})
		if err != nil {
			if errors.Is(err, service.ErrConflict) {
				continue
			}
			return fmt.Errorf("register %s: %w", username, err)
		}
		s.userIDs = append(s.userIDs, user.ID)

		if _, err := s.users.UpdateAccount(user.ID, service.AccountInput{
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			Bio:       fmt.Sprintf("%s at %s", gofakeit.JobTitle(), gofakeit.Company()),
		}); err != nil {
			logger.Warn("更新简介失败", zap.Uint("user_id", user.ID), zap.Error(err))
		}

		for j := gofakeit.Number(1, 4); j > 0; j-- {
			_, err := s.profiles.AddSkill(user.ID, gofakeit.ProgrammingLanguage(), levels[gofakeit.Number(0, len(levels)-1)])
			if err != nil && !errors.Is(err, service.ErrConflict) {
				logger.Warn("添加技能失败", zap.Uint("user_id", user.ID), zap.Error(err))
			}
		}
		s.seedExperiences(user.ID)
	}
	return nil
}

func (s *seeder) seedExperiences(userID uint) {
	start := gofakeit.DateRange(time.Now().AddDate(-15, 0, 0), time.Now().AddDate(-1, 0, 0))
	for j := gofakeit.Number(1, 3); j > 0; j-- {
		in := service.ExperienceInput{
			Company:     gofakeit.Company(),
			Position:    gofakeit.JobTitle(),
			Description: gofakeit.Sentence(12),
			StartDate:   start,
		}
		if j == 1 && gofakeit.Bool() {
			in.IsCurrent = true
		} else {
			end := gofakeit.DateRange(start, start.AddDate(4, 0, 0))
			if end.After(time.Now()) {
				end = time.Now()
			}
			in.EndDate = &end
			start = end
		}
		if _, err := s.profiles.AddExperience(userID, in); err != nil {
			logger.Warn("添加工作经历失败", zap.Uint("user_id", userID), zap.Error(err))
			return
		}
	}
}

func (s *seeder) seedPosts(n int) {
	for i := 0; i < n; i++ {
		post, err := s.posts.CreatePost(s.pickUser(), gofakeit.Sentence(gofakeit.Number(6, 30)))
		if err != nil {
			logger.Warn("发布动态失败", zap.Error(err))
			continue
		}
		s.postIDs = append(s.postIDs, post.ID)
	}
}

func (s *seeder) seedComments(n int) {
	if len(s.postIDs) == 0 {
		return
	}
	for i := 0; i < n; i++ {
		if _, err := s.posts.AddComment(s.pickUser(), s.pickPost(), gofakeit.Sentence(gofakeit.Number(3, 15))); err != nil {
			logger.Warn("评论失败", zap.Error(err))
		}
	}
}

func (s *seeder) seedReactions(n int) {
	if len(s.postIDs) == 0 {
		return
	}
	for i := 0; i < n; i++ {
		kind := model.ReactionKinds[gofakeit.Number(0, len(model.ReactionKinds)-1)]
		if _, err := s.reactions.Toggle(s.pickUser(), s.pickPost(), string(kind)); err != nil {
			logger.Warn("切换反应失败", zap.Error(err))
		}
	}
}

// seedConnections 随机发送请求，约一半被接受，少量被拒绝，其余保持待处理
func (s *seeder) seedConnections(n int) {
	for i := 0; i < n; i++ {
		from, to := s.pickUser(), s.pickUser()
		if from == to {
			continue
		}
		res, err := s.connections.SendRequest(from, to)
		if err != nil {
			logger.Warn("发送连接请求失败", zap.Error(err))
			continue
		}
		if !res.Outcome.Created() {
			continue
		}
		switch p := gofakeit.Float64Range(0, 1); {
		case p < 0.5:
			_, err = s.connections.Accept(to, res.Connection.ID)
		case p < 0.65:
			_, err = s.connections.Reject(to, res.Connection.ID)
		}
		if err != nil {
			logger.Warn("处理连接请求失败", zap.Error(err))
		}
	}
}

// seedBlocked 屏蔽状态没有业务入口，直接改写待处理请求的状态
func (s *seeder) seedBlocked(n int) error {
	for i := 0; i < n; i++ {
		from, to := s.pickUser(), s.pickUser()
		if from == to {
			continue
		}
		res, err := s.connections.SendRequest(from, to)
		if err != nil {
			if errors.Is(err, service.ErrBlocked) {
				continue
			}
			return err
		}
		if res.Connection.Status != model.ConnectionPending {
			continue
		}
		if err := s.db.Model(&model.Connection{}).
			Where("id = ?", res.Connection.ID).
			Update("status", model.ConnectionBlocked).Error; err != nil {
			return fmt.Errorf("block connection %d: %w", res.Connection.ID, err)
		}
	}
	return nil
}

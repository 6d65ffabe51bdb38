package service

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"pro-network/internal/model"
	"pro-network/internal/repository"
	"pro-network/pkg/jwt"
	"pro-network/pkg/logger"
	"pro-network/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxUsernameLen = 150
	maxNameLen     = 30
	maxEmailLen    = 254
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// RegisterInput 注册参数
type RegisterInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
	Password2 string
}

// AccountInput 修改账户资料参数
type AccountInput struct {
	FirstName string
	LastName  string
	Email     string
	Bio       string
}

type UserService struct {
	repo       *repository.UserRepository
	jwtService *jwt.JWTService
}

func NewUserService(repo *repository.UserRepository, jwtService *jwt.JWTService) *UserService {
	return &UserService{repo: repo, jwtService: jwtService}
}

// Register 注册，用户与空资料在同一事务中创建，成功后签发 token
func (s *UserService) Register(in RegisterInput) (*model.User, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)

	if err := validateRegister(in); err != nil {
		return nil, "", err
	}

	// 密码哈希
	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, "", err
	}
	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Profile:      &model.Profile{LastActive: time.Now()},
	}

	err = s.repo.Transaction(func(tx *repository.UserRepository) error {
		taken, err := tx.ExistsByUsername(in.Username)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: 用户名已被占用", ErrConflict)
		}
		taken, err = tx.ExistsByEmail(in.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: 邮箱已被注册", ErrConflict)
		}
		return tx.Create(user)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", fmt.Errorf("%w: 用户名或邮箱已被注册", ErrConflict)
		}
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func validateRegister(in RegisterInput) error {
	switch {
	case in.Username == "":
		return invalid("username", "用户名不能为空")
	case utf8.RuneCountInString(in.Username) > maxUsernameLen:
		return invalid("username", "用户名过长")
	case !usernamePattern.MatchString(in.Username):
		return invalid("username", "用户名只能包含字母、数字和 @/./+/-/_")
	case in.FirstName == "":
		return invalid("first_name", "名不能为空")
	case in.LastName == "":
		return invalid("last_name", "姓不能为空")
	case in.Password == "":
		return invalid("password", "密码不能为空")
	case in.Password != in.Password2:
		return invalid("password2", "两次输入的密码不一致")
	}
	if err := validateNames(in.FirstName, in.LastName); err != nil {
		return err
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if err := password.Validate(in.Password); err != nil {
		return invalid("password", err.Error())
	}
	return nil
}

func validateNames(first, last string) error {
	if utf8.RuneCountInString(first) > maxNameLen {
		return invalid("first_name", "名过长")
	}
	if utf8.RuneCountInString(last) > maxNameLen {
		return invalid("last_name", "姓过长")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email", "邮箱不能为空")
	}
	if len(email) > maxEmailLen {
		return invalid("email", "邮箱过长")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email", "邮箱格式不正确")
	}
	return nil
}

// Login 登录（用户名或邮箱），成功后刷新最近活跃时间
func (s *UserService) Login(identifier, plainPassword string) (*model.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || plainPassword == "" {
		return nil, "", invalid("username", "用户名和密码不能为空")
	}
	u, err := s.repo.GetByUsernameOrEmail(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUnauthorized
		}
		return nil, "", err
	}
	if !password.Verify(plainPassword, u.PasswordHash) {
		return nil, "", ErrUnauthorized
	}
	token, err := s.jwtService.GenerateToken(u.ID, u.Username)
	if err != nil {
		return nil, "", err
	}
	s.Touch(u.ID)
	return u, token, nil
}

// Me 当前用户
func (s *UserService) Me(userID uint) (*model.User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// UpdateAccount 修改姓名、邮箱与简介，邮箱不能与其他用户重复
func (s *UserService) UpdateAccount(userID uint, in AccountInput) (*model.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Bio = strings.TrimSpace(in.Bio)

	if err := validateNames(in.FirstName, in.LastName); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}

	err := s.repo.Transaction(func(tx *repository.UserRepository) error {
		if _, err := tx.GetByID(userID); err != nil {
			return err
		}
		taken, err := tx.ExistsByEmail(in.Email, userID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: 邮箱已被注册", ErrConflict)
		}
		if err := tx.UpdateAccount(userID, in.FirstName, in.LastName, in.Email); err != nil {
			return err
		}
		return tx.UpdateBio(userID, in.Bio)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: 邮箱已被注册", ErrConflict)
		}
		return nil, notFound(err)
	}
	return s.repo.GetByID(userID)
}

// DeleteAccount 删除账户，资料、动态、连接等由外键级联删除
func (s *UserService) DeleteAccount(userID uint) error {
	if _, err := s.repo.GetByID(userID); err != nil {
		return notFound(err)
	}
	return s.repo.Delete(userID)
}

// Touch 刷新最近活跃时间，失败只记录日志
func (s *UserService) Touch(userID uint) {
	if err := s.repo.TouchLastActive(userID); err != nil {
		logger.Warn("刷新最近活跃时间失败", zap.Uint("user_id", userID), zap.Error(err))
	}
}

package service

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// 业务错误，handler 层据此映射HTTP状态码
var (
	ErrNotFound     = errors.New("资源不存在")
	ErrSelfRequest  = errors.New("不能向自己发送连接请求")
	ErrBlocked      = errors.New("该连接已被屏蔽")
	ErrValidation   = errors.New("参数校验失败")
	ErrConflict     = errors.New("数据冲突")
	ErrUnauthorized = errors.New("用户名或密码错误")
)

// 写事务最多执行次数
const maxWriteAttempts = 3

// mysql 检测到死锁时回滚整个事务并返回 1213
const mysqlDeadlock = 1213

// retryableWrite 并发写入冲突：唯一索引冲突或 mysql 死锁，重新执行事务即可
func retryableWrite(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDeadlock
}

// ValidationError 字段校验错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is 使 errors.Is(err, ErrValidation) 成立
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// notFound 将 gorm 的记录不存在错误转换为 ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

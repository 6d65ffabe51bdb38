// Package testutil 提供测试使用的数据库与数据构造工具
package testutil

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"pro-network/config"
	"pro-network/internal/model"
	dbPkg "pro-network/pkg/db"

	"gorm.io/gorm"
)

// NewDB 在临时目录创建已迁移的 sqlite 数据库
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}
	db, err := dbPkg.Open(cfg, "error")
	if err != nil {
		t.Fatal(err)
	}
	if err := dbPkg.AutoMigrate(db); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

var userSeq atomic.Uint64

// CreateUser 创建带空资料的用户，username 为空时自动生成
func CreateUser(t testing.TB, db *gorm.DB, username, firstName, lastName, bio string) *model.User {
	t.Helper()

	if username == "" {
		username = fmt.Sprintf("user%d", userSeq.Add(1))
	}
	u := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		FirstName:    firstName,
		LastName:     lastName,
		Profile:      &model.Profile{Bio: bio},
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatal(err)
	}
	return u
}

// CreatePost 创建一条动态
func CreatePost(t testing.TB, db *gorm.DB, authorID uint, content string) *model.Post {
	t.Helper()

	p := &model.Post{AuthorID: authorID, Content: content}
	if err := db.Create(p).Error; err != nil {
		t.Fatal(err)
	}
	return p
}

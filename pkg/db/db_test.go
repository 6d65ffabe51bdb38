package db

import (
	"path/filepath"
	"testing"

	"pro-network/config"
	"pro-network/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "nested", "test.db"),
	}
	db, err := Open(cfg, "error")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m))
	}

	// 无方向唯一索引：反向插入同一对用户必须失败
	users := []model.User{
		{Username: "a", Email: "a@example.com", PasswordHash: "x"},
		{Username: "b", Email: "b@example.com", PasswordHash: "x"},
	}
	require.NoError(t, db.Create(&users).Error)
	require.NoError(t, db.Create(model.NewConnection(users[0].ID, users[1].ID)).Error)
	err = db.Create(model.NewConnection(users[1].ID, users[0].ID)).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"}, "info")
	assert.Error(t, err)
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, gormLogLevel("debug"))
	assert.Equal(t, logger.Warn, gormLogLevel("info"))
	assert.Equal(t, logger.Error, gormLogLevel("fatal"))
	assert.Equal(t, logger.Warn, gormLogLevel(""))
}

func TestGormLoggerIgnoresRecordNotFound(t *testing.T) {
	cfg := gormLoggerConfig("error")
	assert.True(t, cfg.IgnoreRecordNotFoundError)
	assert.Equal(t, logger.Error, cfg.LogLevel)
}

func TestSQLiteLowerIsUnicodeAware(t *testing.T) {
	db, err := Open(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "lower.db"),
	}, "error")
	require.NoError(t, err)

	var lowered string
	require.NoError(t, db.Raw("SELECT LOWER(?)", "ÉLODIE Ørsted").Scan(&lowered).Error)
	assert.Equal(t, "élodie ørsted", lowered)

	var isNull bool
	require.NoError(t, db.Raw("SELECT LOWER(NULL) IS NULL").Scan(&isNull).Error)
	assert.True(t, isNull)
}

func TestAutoMigrateNilDB(t *testing.T) {
	assert.Error(t, AutoMigrate(nil))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromYAMLMissingFile(t *testing.T) {
	cfg := loadFromYAML(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, getDefaultConfig(), cfg)
}

func TestLoadFromYAMLKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("database:\n  driver: sqlite\n  path: /tmp/x.db\nsearch:\n  maxResults: 5\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg := loadFromYAML(path)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Feed.PageSize)
}

func TestLoadFromYAMLInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0o644))

	assert.Equal(t, getDefaultConfig(), loadFromYAML(path))
}

func TestOverrideWithEnvVars(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_EXPIRE_TIME", "2h")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "0")
	t.Setenv("SEARCH_MAX_RESULTS", "50")
	t.Setenv("DB_MAX_OPEN", "not-a-number")

	cfg := getDefaultConfig()
	overrideWithEnvVars(cfg)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 50, cfg.Search.MaxResults)
	assert.Equal(t, 100, cfg.Database.MaxOpen)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, loadDotEnv(filepath.Join(dir, "missing.env")))

	good := filepath.Join(dir, "good.env")
	require.NoError(t, os.WriteFile(good, []byte("PRONET_DOTENV_KEY=from-file\n"), 0o644))
	t.Setenv("PRONET_DOTENV_KEY", "")
	require.NoError(t, os.Unsetenv("PRONET_DOTENV_KEY"))
	require.NoError(t, loadDotEnv(good))
	assert.Equal(t, "from-file", os.Getenv("PRONET_DOTENV_KEY"))

	bad := filepath.Join(dir, "bad.env")
	require.NoError(t, os.WriteFile(bad, []byte("SERVER_PORT=9090\nBAD-KEY=1\n"), 0o644))
	err := loadDotEnv(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}

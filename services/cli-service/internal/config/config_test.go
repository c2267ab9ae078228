package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "http://localhost:8000", config.API.BaseURL)
	assert.Equal(t, 30*time.Second, config.Timeout())
	assert.Equal(t, BackendFile, config.Session.Backend)
	assert.Equal(t, 5*time.Second, config.NotifyTTL())
	assert.NoError(t, config.Validate())
}

// TestLoadConfig_MissingFile проверяет, что отсутствующий файл дает значения по умолчанию
func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("ASSISTANTHUB_HOME", t.TempDir())

	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "table", config.Output.Format)
	assert.Equal(t, filepath.Join(os.Getenv("ASSISTANTHUB_HOME"), "session"), config.Session.Dir)
}

// TestLoadConfig_FileAndEnv проверяет приоритет переменных окружения над файлом
func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  base_url: https://hub.example.com
  timeout: 10
session:
  backend: redis
  dir: /tmp/hub-session
redis:
  addr: redis:6379
output:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	t.Setenv("ASSISTANTHUB_API_URL", "https://staging.example.com")
	t.Setenv("ASSISTANTHUB_LOG_LEVEL", "debug")

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://staging.example.com", config.API.BaseURL)
	assert.Equal(t, 10, config.API.Timeout)
	assert.Equal(t, BackendRedis, config.Session.Backend)
	assert.Equal(t, "/tmp/hub-session", config.Session.Dir)
	assert.Equal(t, "redis:6379", config.Redis.Addr)
	assert.Equal(t, "json", config.Output.Format)
	assert.Equal(t, "debug", config.Logger.Level)
	assert.Equal(t, path, config.Path)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidEnvTimeout(t *testing.T) {
	t.Setenv("ASSISTANTHUB_API_TIMEOUT", "soon")

	_, err := LoadConfig("")
	assert.Error(t, err)
}

// TestSaveAndReload проверяет сохранение и повторную загрузку
func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	config, err := InitConfig(path)
	require.NoError(t, err)
	require.NoError(t, config.Set("api.base_url", "https://hub.example.com/"))
	require.NoError(t, config.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://hub.example.com", reloaded.API.BaseURL)
}

func TestSave_NoPath(t *testing.T) {
	assert.Error(t, DefaultConfig().Save())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }},
		{"base url without scheme", func(c *Config) { c.API.BaseURL = "hub.example.com" }},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }},
		{"unknown backend", func(c *Config) { c.Session.Backend = "sqlite" }},
		{"postgres without url", func(c *Config) { c.Session.Backend = BackendPostgres }},
		{"redis without addr", func(c *Config) { c.Session.Backend = BackendRedis; c.Redis.Addr = "" }},
		{"bad output format", func(c *Config) { c.Output.Format = "xml" }},
		{"zero notify ttl", func(c *Config) { c.Notify.TTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestSet(t *testing.T) {
	config := DefaultConfig()

	require.NoError(t, config.Set("api.timeout", "45"))
	require.NoError(t, config.Set("output.colors", "false"))
	require.NoError(t, config.Set("session.backend", "memory"))
	require.NoError(t, config.Set("notify.ttl", "3"))

	assert.Equal(t, 45, config.API.Timeout)
	assert.False(t, config.Output.Colors)
	assert.Equal(t, BackendMemory, config.Session.Backend)
	assert.Equal(t, 3, config.Notify.TTL)

	assert.Error(t, config.Set("api.timeout", "forever"))
	assert.Error(t, config.Set("output.colors", "maybe"))
	assert.Error(t, config.Set("unknown.key", "x"))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileLoader_Load_Success(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 9000
cache:
  backend: memory
  ttl: 2m
providers:
  - id: local
    kind: backup
    base_url: http://127.0.0.1:8081/api.php
    platforms: [wy, qq]
    timeout: 3s
    rate_limit: 2.5
`)

	cfg, err := NewFileLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "local", cfg.Providers[0].ID)
	assert.Equal(t, []string{"wy", "qq"}, cfg.Providers[0].Platforms)
	assert.Equal(t, 3*time.Second, cfg.Providers[0].Timeout)
	assert.Equal(t, 2.5, cfg.Providers[0].RateLimit)
}

func TestFileLoader_Load_FileNotFound(t *testing.T) {
	_, err := NewFileLoader("/nonexistent/path/config.yaml").Load()
	assert.Error(t, err)
}

func TestFileLoader_Load_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `invalid: yaml: content: [}]`)

	_, err := NewFileLoader(path).Load()
	assert.Error(t, err)
}

func TestFileLoader_Load_WithDefaults(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
`)

	cfg, err := NewFileLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, time.Minute, cfg.Cache.SweepInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 20, cfg.Plugin.MaxSearchCount)
	assert.Equal(t, DefaultProviders(), cfg.Providers)
}

func TestFileLoader_Load_DefaultTimeout(t *testing.T) {
	path := writeConfig(t, `
providers:
  - id: main
    kind: main
    base_url: https://api.example.com/music
    platforms: [netease]
`)

	cfg, err := NewFileLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 8*time.Second, cfg.Providers[0].Timeout)
}

func TestFileLoader_Load_EnvOverride(t *testing.T) {
	t.Setenv("LXR_CACHE_TTL", "90s")
	t.Setenv("LXR_SERVER_HTTP_PORT", "9191")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 9191, cfg.Server.HTTPPort)
}

func TestFileLoader_Load_InvalidValues(t *testing.T) {
	path := writeConfig(t, `
cache:
  backend: memcached
`)

	_, err := NewFileLoader(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memcached")
}

func TestCreateExampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, CreateExampleConfig(path))

	cfg, err := NewFileLoader(path).Load()
	require.NoError(t, err)
	assert.Len(t, cfg.Providers, 2)
	assert.Equal(t, "wyy-main", cfg.Providers[0].ID)
}

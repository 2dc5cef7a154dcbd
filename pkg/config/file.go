package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. LXR_CACHE_TTL.
const EnvPrefix = "LXR"

// FileLoader loads configuration from YAML files and environment variables.
type FileLoader struct {
	configPath string
	validator  *Validator
}

// NewFileLoader creates a new file loader.
func NewFileLoader(configPath string) *FileLoader {
	return &FileLoader{
		configPath: configPath,
		validator:  NewValidator(),
	}
}

// Load loads configuration from file and environment variables.
// A missing config file is not an error when no explicit path was given.
func (l *FileLoader) Load() (*Config, error) {
	v := newViper()

	if l.configPath != "" {
		v.SetConfigFile(l.configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := mergeConsul(v); err != nil {
		return nil, fmt.Errorf("failed to load consul overlay: %w", err)
	}

	return l.decode(v)
}

// LoadFromEnv loads configuration from defaults and environment variables only.
func LoadFromEnv() (*Config, error) {
	return NewFileLoader("").decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func (l *FileLoader) decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Providers) == 0 {
		cfg.Providers = DefaultProviders()
	}
	for i := range cfg.Providers {
		if cfg.Providers[i].Timeout == 0 {
			cfg.Providers[i].Timeout = 8 * time.Second
		}
	}

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.rate_burst", 40)

	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.sweep_interval", time.Minute)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 64)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)

	v.SetDefault("status.timeout", 5*time.Second)
	v.SetDefault("status.probe_providers", false)

	v.SetDefault("plugin.name", "lx source resolver")
	v.SetDefault("plugin.max_search_count", 20)

	v.SetDefault("consul.scheme", "http")
	v.SetDefault("consul.timeout", 5*time.Second)
	v.SetDefault("consul.kv_prefix", "lx-source-resolver")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.environment", "development")
}

// CreateExampleConfig writes an example configuration file.
func CreateExampleConfig(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(exampleYAML), 0644); err != nil {
		return fmt.Errorf("failed to write example config: %w", err)
	}

	return nil
}

const exampleYAML = `# lx source resolver configuration
server:
  http_port: 8080
  mode: release
  rate_limit: 20    # requests per second per client IP, 0 disables
  rate_burst: 40

cache:
  backend: memory   # memory | redis
  ttl: 5m
  sweep_interval: 1m

redis:
  addr: localhost:6379
  db: 0

log:
  level: info
  # file: logs/lxresolver.log

status:
  # url: https://example.com/lx/status.json
  timeout: 5s
  probe_providers: false

plugin:
  name: lx source resolver
  max_search_count: 20

# Values stored at <kv_prefix>/config in Consul KV override this file.
consul:
  # address: 127.0.0.1:8500
  kv_prefix: lx-source-resolver

tracing:
  enabled: false
  # otlp_endpoint: otel-collector:4317
  environment: development
  sample_ratio: 1.0

# Providers are tried in order for each platform they list.
providers:
  - id: wyy-main
    kind: main
    base_url: https://www.s0o1.com/API/wyy_music
    platforms: [netease]
    timeout: 8s
    search_timeout: 5s
    user_agent: Mozilla/5.0
  - id: gd-backup
    kind: backup
    base_url: https://music-api.gdstudio.xyz/api.php
    platforms: [netease, qq, kugou, kuwo, migu]
    timeout: 8s
    rate_limit: 5
    burst: 5
`

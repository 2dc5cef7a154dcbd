// Package config provides configuration management for the lx source resolver.
package config

import "time"

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Cache     CacheConfig      `mapstructure:"cache"`
	Redis     RedisConfig      `mapstructure:"redis"`
	Log       LogConfig        `mapstructure:"log"`
	Status    StatusConfig     `mapstructure:"status"`
	Plugin    PluginConfig     `mapstructure:"plugin"`
	Tracing   TracingConfig    `mapstructure:"tracing"`
	Consul    ConsulConfig     `mapstructure:"consul"`
	Providers []ProviderConfig `mapstructure:"providers"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test

	// Per client IP limit on inbound requests; 0 disables it.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// CacheConfig holds URL cache settings.
type CacheConfig struct {
	Backend       string        `mapstructure:"backend"` // memory or redis
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// RedisConfig holds Redis connection settings for the redis cache backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// StatusConfig holds the startup health-check settings.
type StatusConfig struct {
	URL            string        `mapstructure:"url"` // empty skips the remote check
	Timeout        time.Duration `mapstructure:"timeout"`
	ProbeProviders bool          `mapstructure:"probe_providers"`
}

// PluginConfig holds the capability announcement settings.
type PluginConfig struct {
	Name           string `mapstructure:"name"`
	MaxSearchCount int    `mapstructure:"max_search_count"`
}

// TracingConfig holds OpenTelemetry trace export settings.
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"` // gRPC, e.g. otel-collector:4317
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

// ProviderConfig describes one upstream API integration.
// Providers are tried in the order they are listed.
type ProviderConfig struct {
	ID            string        `mapstructure:"id"`
	Kind          string        `mapstructure:"kind"` // main or backup
	BaseURL       string        `mapstructure:"base_url"`
	Platforms     []string      `mapstructure:"platforms"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SearchTimeout time.Duration `mapstructure:"search_timeout"`
	RateLimit     float64       `mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	Burst         int           `mapstructure:"burst"`
	UserAgent     string        `mapstructure:"user_agent"`
}

// Provider kinds.
const (
	ProviderKindMain   = "main"
	ProviderKindBackup = "backup"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// DefaultProviders returns the built-in provider chain used when the
// configuration does not list any.
func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{
			ID:            "wyy-main",
			Kind:          ProviderKindMain,
			BaseURL:       "https://www.s0o1.com/API/wyy_music",
			Platforms:     []string{"netease"},
			Timeout:       8 * time.Second,
			SearchTimeout: 5 * time.Second,
			UserAgent:     "Mozilla/5.0",
		},
		{
			ID:        "gd-backup",
			Kind:      ProviderKindBackup,
			BaseURL:   "https://music-api.gdstudio.xyz/api.php",
			Platforms: []string{"netease", "qq", "kugou", "kuwo", "migu"},
			Timeout:   8 * time.Second,
			RateLimit: 5,
			Burst:     5,
			UserAgent: "Mozilla/5.0",
		},
	}
}

package config

import (
	"fmt"
	"net/url"
	"strings"
)

var knownPlatforms = map[string]bool{
	"netease": true, "qq": true, "kugou": true, "kuwo": true, "migu": true,
	"wy": true, "tx": true, "kg": true, "kw": true, "mg": true,
}

// Validator validates configuration values.
type Validator struct{}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(cfg *Config) error {
	if err := v.ValidateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	if err := v.ValidateCache(&cfg.Cache, &cfg.Redis); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	if err := v.ValidateStatus(&cfg.Status); err != nil {
		return fmt.Errorf("status: %w", err)
	}

	if err := v.ValidateTracing(&cfg.Tracing); err != nil {
		return fmt.Errorf("tracing: %w", err)
	}

	if err := v.ValidateProviders(cfg.Providers); err != nil {
		return fmt.Errorf("providers: %w", err)
	}

	return nil
}

// ValidateTracing validates tracing configuration.
func (v *Validator) ValidateTracing(cfg *TracingConfig) error {
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		return fmt.Errorf("sample_ratio must be within [0, 1], got %v", cfg.SampleRatio)
	}
	if cfg.Enabled && cfg.OTLPEndpoint == "" {
		return fmt.Errorf("otlp_endpoint is required when tracing is enabled")
	}
	return nil
}

// ValidateServer validates server configuration.
func (v *Validator) ValidateServer(cfg *ServerConfig) error {
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", cfg.HTTPPort)
	}

	if cfg.ReadTimeout < 0 {
		return fmt.Errorf("read_timeout cannot be negative")
	}

	if cfg.WriteTimeout < 0 {
		return fmt.Errorf("write_timeout cannot be negative")
	}

	if cfg.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout cannot be negative")
	}

	if cfg.RateLimit < 0 || cfg.RateBurst < 0 {
		return fmt.Errorf("rate_limit and rate_burst cannot be negative")
	}

	return nil
}

// ValidateCache validates cache configuration and, for the redis backend,
// the redis connection settings.
func (v *Validator) ValidateCache(cfg *CacheConfig, redis *RedisConfig) error {
	if cfg.TTL <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", cfg.TTL)
	}

	if cfg.SweepInterval < 0 {
		return fmt.Errorf("sweep_interval cannot be negative")
	}

	switch cfg.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis backend")
		}
		if redis.PoolSize < 0 {
			return fmt.Errorf("redis.pool_size cannot be negative")
		}
	default:
		return fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	return nil
}

// ValidateStatus validates the health-check configuration.
func (v *Validator) ValidateStatus(cfg *StatusConfig) error {
	if cfg.URL != "" {
		if err := validateHTTPURL(cfg.URL); err != nil {
			return fmt.Errorf("url: %w", err)
		}
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}

// ValidateProviders validates the provider chain.
func (v *Validator) ValidateProviders(providers []ProviderConfig) error {
	if len(providers) == 0 {
		return fmt.Errorf("at least one provider is required")
	}

	seen := make(map[string]bool, len(providers))
	for i, p := range providers {
		if p.ID == "" {
			return fmt.Errorf("provider[%d]: id is required", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("provider %q: duplicate id", p.ID)
		}
		seen[p.ID] = true

		if p.Kind != ProviderKindMain && p.Kind != ProviderKindBackup {
			return fmt.Errorf("provider %q: unknown kind %q", p.ID, p.Kind)
		}

		if err := validateHTTPURL(p.BaseURL); err != nil {
			return fmt.Errorf("provider %q: base_url: %w", p.ID, err)
		}

		if len(p.Platforms) == 0 {
			return fmt.Errorf("provider %q: platforms is required", p.ID)
		}
		for _, platform := range p.Platforms {
			if !knownPlatforms[strings.ToLower(platform)] {
				return fmt.Errorf("provider %q: unknown platform %q", p.ID, platform)
			}
		}

		if p.Timeout < 0 || p.SearchTimeout < 0 {
			return fmt.Errorf("provider %q: timeouts cannot be negative", p.ID)
		}
		if p.RateLimit < 0 || p.Burst < 0 {
			return fmt.Errorf("provider %q: rate_limit and burst cannot be negative", p.ID)
		}
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https: %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required: %q", raw)
	}
	return nil
}

package config

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/hashicorp/consul/api"
	"github.com/spf13/viper"
)

// DefaultConsulKey is the KV key, under the prefix, holding the YAML overlay.
const DefaultConsulKey = "config"

// ConsulConfig holds Consul KV settings for the remote config overlay.
type ConsulConfig struct {
	Address    string        `mapstructure:"address"` // empty disables the overlay
	Scheme     string        `mapstructure:"scheme"`
	Token      string        `mapstructure:"token"`
	Datacenter string        `mapstructure:"datacenter"`
	Timeout    time.Duration `mapstructure:"timeout"`
	KVPrefix   string        `mapstructure:"kv_prefix"`
}

// ConsulSource reads a YAML config document from Consul KV.
type ConsulSource struct {
	client  *api.Client
	key     string
	timeout time.Duration
}

// NewConsulSource creates a Consul KV source.
func NewConsulSource(cfg *ConsulConfig) (*ConsulSource, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("consul address is required")
	}

	config := api.DefaultConfig()
	config.Address = cfg.Address
	if cfg.Scheme != "" {
		config.Scheme = cfg.Scheme
	}
	config.Token = cfg.Token
	config.Datacenter = cfg.Datacenter

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &ConsulSource{
		client:  client,
		key:     path.Join(cfg.KVPrefix, DefaultConsulKey),
		timeout: timeout,
	}, nil
}

// Key returns the full KV key read by the source.
func (s *ConsulSource) Key() string {
	return s.key
}

// Fetch returns the overlay document, or nil when the key does not exist.
func (s *ConsulSource) Fetch(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	pair, _, err := s.client.KV().Get(s.key, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", s.key, err)
	}
	if pair == nil {
		return nil, nil
	}
	return pair.Value, nil
}

// Put stores an overlay document.
func (s *ConsulSource) Put(ctx context.Context, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.KV().Put(&api.KVPair{Key: s.key, Value: value}, (&api.WriteOptions{}).WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", s.key, err)
	}
	return nil
}

// mergeConsul merges the Consul overlay into v when consul.address is set.
// Overlay values win over the file; env variables still win over both.
func mergeConsul(v *viper.Viper) error {
	var cfg ConsulConfig
	if err := v.UnmarshalKey("consul", &cfg); err != nil {
		return fmt.Errorf("failed to decode consul config: %w", err)
	}
	if cfg.Address == "" {
		return nil
	}

	source, err := NewConsulSource(&cfg)
	if err != nil {
		return err
	}
	doc, err := source.Fetch(context.Background())
	if err != nil {
		return err
	}
	if len(doc) == 0 {
		return nil
	}

	overlay := viper.New()
	overlay.SetConfigType("yaml")
	if err := overlay.ReadConfig(bytes.NewReader(doc)); err != nil {
		return fmt.Errorf("invalid consul overlay %s: %w", source.Key(), err)
	}
	return v.MergeConfigMap(overlay.AllSettings())
}

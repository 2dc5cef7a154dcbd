package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiaoxiao0301/lx-source-resolver/pkg/config"
)

// New 按配置创建缓存，返回的 closer 用于释放连接
func New(ctx context.Context, cfg config.CacheConfig, redisCfg config.RedisConfig) (Store, func() error, error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		client, err := NewRedisClient(ctx, redisCfg)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisCache(client, DefaultRedisPrefix, cfg.TTL), client.Close, nil
	case config.CacheBackendMemory, "":
		return NewMemoryCache(cfg.TTL, nil), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// NewRedisClient 创建Redis客户端并检测连通性
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return rdb, nil
}

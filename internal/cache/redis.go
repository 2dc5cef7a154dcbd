package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix Redis键前缀
const DefaultRedisPrefix = "lxr:url:"

// RedisCache 多实例共享的 Redis 缓存，过期由 Redis 负责
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	clock  Clock

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewRedisCache 创建Redis缓存
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		clock:  SystemClock,
	}
}

// Get 获取缓存
func (r *RedisCache) Get(ctx context.Context, key Key) (*Entry, error) {
	data, err := r.client.Get(ctx, r.makeKey(key)).Bytes()
	if err != nil {
		r.misses.Add(1)
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		r.misses.Add(1)
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	// 与内存缓存相同的年龄检查
	if entry.Expired(r.clock.Now(), r.ttl) {
		r.misses.Add(1)
		return nil, ErrCacheMiss
	}

	r.hits.Add(1)
	return &entry, nil
}

// Put 写入缓存
func (r *RedisCache) Put(ctx context.Context, key Key, entry *Entry) error {
	stored := *entry
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.clock.Now()
	}

	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := r.client.Set(ctx, r.makeKey(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// SweepExpired Redis 自行过期，无需清理
func (r *RedisCache) SweepExpired(context.Context) int {
	return 0
}

// Stats 获取统计信息
func (r *RedisCache) Stats(ctx context.Context) Stats {
	hits, misses := r.hits.Load(), r.misses.Load()
	stats := Stats{
		Backend: "redis",
		Size:    -1,
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate(hits, misses),
		TTL:     r.ttl.String(),
	}

	var cursor uint64
	size := 0
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 200).Result()
		if err != nil {
			return stats
		}
		size += len(keys)
		if next == 0 {
			break
		}
		cursor = next
	}
	stats.Size = size
	return stats
}

// makeKey 生成完整的key（带前缀）
func (r *RedisCache) makeKey(key Key) string {
	return r.prefix + key.String()
}

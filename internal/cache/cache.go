// Package cache 播放地址缓存
package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrCacheMiss 缓存未命中（含已过期）
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidData 无效的缓存数据
	ErrInvalidData = errors.New("invalid cache data")
)

// DefaultTTL 默认缓存有效期
const DefaultTTL = 5 * time.Minute

// Key 缓存键：平台 + 规范歌曲ID + 请求音质标签（协商前）
type Key struct {
	Platform string
	SongID   string
	Tier     string
}

// String 形如 netease:12345:flac
func (k Key) String() string {
	return strings.Join([]string{k.Platform, k.SongID, k.Tier}, ":")
}

// Entry 缓存条目，写入后不可变
type Entry struct {
	URL        string    `json:"url"`
	Tier       string    `json:"tier"`
	ProviderID string    `json:"provider_id"`
	SongName   string    `json:"song_name,omitempty"`
	Artist     string    `json:"artist,omitempty"`
	Quality    string    `json:"quality,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Expired 条目年龄超过 ttl 即为过期
func (e *Entry) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CreatedAt) > ttl
}

// Stats 缓存统计
type Stats struct {
	Backend string  `json:"backend"`
	Size    int     `json:"size"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
	TTL     string  `json:"ttl"`
}

// Store 缓存存储接口
type Store interface {
	// Get 命中返回条目，未命中或过期返回 ErrCacheMiss
	Get(ctx context.Context, key Key) (*Entry, error)
	// Put 总是覆盖
	Put(ctx context.Context, key Key, entry *Entry) error
	// SweepExpired 删除过期条目，返回删除数量
	SweepExpired(ctx context.Context) int
	Stats(ctx context.Context) Stats
}

// Clock 时间源，测试中可替换
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock 系统时钟
var SystemClock Clock = systemClock{}

func hitRate(hits, misses uint64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

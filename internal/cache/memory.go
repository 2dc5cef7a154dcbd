package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache 进程内缓存，过期条目在读取或清理时删除
type MemoryCache struct {
	ttl   time.Duration
	clock Clock

	mu      sync.RWMutex
	entries map[Key]*Entry

	// 统计
	hits   uint64
	misses uint64
}

// NewMemoryCache 创建内存缓存，clock 为 nil 时使用系统时钟
func NewMemoryCache(ttl time.Duration, clock Clock) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = SystemClock
	}
	return &MemoryCache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[Key]*Entry),
	}
}

// Get 获取缓存
func (m *MemoryCache) Get(_ context.Context, key Key) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.entries[key]
	if !exists {
		m.misses++
		return nil, ErrCacheMiss
	}

	// 惰性过期
	if entry.Expired(m.clock.Now(), m.ttl) {
		delete(m.entries, key)
		m.misses++
		return nil, ErrCacheMiss
	}

	m.hits++
	copied := *entry
	return &copied, nil
}

// Put 写入缓存，CreatedAt 为空时使用当前时间
func (m *MemoryCache) Put(_ context.Context, key Key, entry *Entry) error {
	stored := *entry
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = m.clock.Now()
	}

	m.mu.Lock()
	m.entries[key] = &stored
	m.mu.Unlock()
	return nil
}

// SweepExpired 清理过期条目
func (m *MemoryCache) SweepExpired(_ context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	expired := 0
	for key, entry := range m.entries {
		if entry.Expired(now, m.ttl) {
			delete(m.entries, key)
			expired++
		}
	}
	return expired
}

// Len 当前条目数（含尚未清理的过期条目）
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Stats 获取统计信息
func (m *MemoryCache) Stats(_ context.Context) Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		Backend: "memory",
		Size:    len(m.entries),
		Hits:    m.hits,
		Misses:  m.misses,
		HitRate: hitRate(m.hits, m.misses),
		TTL:     m.ttl.String(),
	}
}

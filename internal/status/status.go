// Package status 服务状态生命周期
//
// uninitialized -> checking -> ready | degraded | disabled
package status

import (
	"sync"
	"time"
)

// Status 服务状态
type Status string

const (
	Uninitialized Status = "uninitialized"
	Checking      Status = "checking"
	Ready         Status = "ready"
	Degraded      Status = "degraded"
	Disabled      Status = "disabled"
)

// Snapshot 状态快照
type Snapshot struct {
	Status    Status    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tracker 线程安全的状态持有者，由构造函数注入到 Resolver 与 Plugin
type Tracker struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// NewTracker 创建状态追踪器（uninitialized）
func NewTracker() *Tracker {
	return &Tracker{snapshot: Snapshot{Status: Uninitialized, UpdatedAt: time.Now()}}
}

// Set 更新状态；disabled 为终态，不会被覆盖
func (t *Tracker) Set(s Status, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.snapshot.Status == Disabled {
		return
	}
	t.snapshot = Snapshot{Status: s, Reason: reason, UpdatedAt: time.Now()}
}

// Status 当前状态
func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot.Status
}

// Snapshot 当前快照
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot
}

// Disabled 服务是否被禁用
func (t *Tracker) Disabled() bool {
	return t.Status() == Disabled
}

// Serving 是否可以处理解析请求（disabled 以外均可）
func (t *Tracker) Serving() bool {
	return !t.Disabled()
}

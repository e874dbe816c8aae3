package registry

import (
	"context"
	"sync"
)

// Store 持久化当前注册记录。调用方（Registry）负责串行化访问。
type Store interface {
	// Load 返回未过期的记录，不存在时返回 nil。
	Load(ctx context.Context) (*Record, error)
	// Save 覆盖当前记录，ExpiresAt 决定存活时间。
	Save(ctx context.Context, rec Record) error
	// Delete 仅在当前记录 ID 匹配时删除。
	Delete(ctx context.Context, id string) (bool, error)
}

// MemoryStore 是进程内实现。
type MemoryStore struct {
	clock Clock

	mu  sync.Mutex
	rec *Record
}

// NewMemoryStore 创建进程内存储，clock 为空时使用真实时钟。
func NewMemoryStore(clock Clock) *MemoryStore {
	if clock == nil {
		clock = NewRealClock()
	}
	return &MemoryStore{clock: clock}
}

// Load 实现 Store，过期记录会被顺带清除。
func (s *MemoryStore) Load(context.Context) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return nil, nil
	}
	if s.rec.Expired(s.clock.Now()) {
		s.rec = nil
		return nil, nil
	}
	rec := s.rec.clone()
	return &rec, nil
}

// Save 实现 Store。
func (s *MemoryStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := rec.clone()
	s.rec = &cp
	return nil
}

// Delete 实现 Store。
func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil || s.rec.ID != id {
		return false, nil
	}
	s.rec = nil
	return true, nil
}

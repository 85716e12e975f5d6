package cache

import (
	"context"
	"sync"
)

// MemoryStore 进程内存储
type MemoryStore[V any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[V]
}

// NewMemoryStore 创建内存存储
func NewMemoryStore[V any]() *MemoryStore[V] {
	return &MemoryStore[V]{entries: make(map[string]Entry[V])}
}

func (s *MemoryStore[V]) Get(_ context.Context, key string) (Entry[V], bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok, nil
}

func (s *MemoryStore[V]) Set(_ context.Context, key string, entry Entry[V]) error {
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore[V]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore[V]) Clear(_ context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]Entry[V])
	s.mu.Unlock()
	return nil
}

// Len 当前条目数
func (s *MemoryStore[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

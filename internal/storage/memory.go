package storage

import (
	"context"
	"strings"
	"sync"
)

type memoryStore struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	closed bool
}

// NewMemory returns a Store that keeps ids in memory only.
func NewMemory(ids ...string) Store {
	s := &memoryStore{seen: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			s.seen[id] = struct{}{}
		}
	}
	return s
}

func (s *memoryStore) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[id]
	return ok
}

func (s *memoryStore) Record(ctx context.Context, id string) error {
	_ = ctx
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.seen[id] = struct{}{}
	return nil
}

func (s *memoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

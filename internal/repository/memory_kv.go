package repository

import (
	"context"
	"fmt"
	"sync"
)

// MemoryKVStore keeps values in process memory. Nothing survives a restart.
type MemoryKVStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{data: make(map[string]string)}
}

func (s *MemoryKVStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", fmt.Errorf("memory key %q: %w", key, ErrNotFound)
	}
	return v, nil
}

func (s *MemoryKVStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	return nil
}

func (s *MemoryKVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

var (
	_ KVStore = (*MemoryKVStore)(nil)
	_ KVStore = (*SQLiteKVStore)(nil)
	_ KVStore = (*RedisKVStore)(nil)
)

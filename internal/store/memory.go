package store

import (
	"context"
	"sync"
)

// MemoryStore keeps encoded values in a map. Values go through the same
// codec as the durable backends so temporal fields are re-parsed on read.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string][]byte
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

func (s *MemoryStore) GetItem(_ context.Context, key string, dst any) (bool, error) {
	s.mu.Lock()
	data, ok := s.items[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := decodeValue(key, data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MemoryStore) SetItem(_ context.Context, key string, value any) error {
	data, err := encodeValue(key, value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items[key] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

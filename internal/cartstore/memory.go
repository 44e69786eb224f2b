package cartstore

import (
	"context"
	"sync"

	"github.com/freshsouq/freshsouq-backend/internal/cart"
)

// Memory is a process-local keyspace of cart blobs. It backs dev setups and
// tests; contents do not survive a restart.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{blobs: map[string][]byte{}}
}

// ForKey returns a cart.Store view bound to one key.
func (m *Memory) ForKey(key string) cart.Store {
	return &memoryStore{parent: m, key: key}
}

type memoryStore struct {
	parent *Memory
	key    string
}

func (s *memoryStore) Load(ctx context.Context) ([]cart.LineItem, error) {
	s.parent.mu.RLock()
	blob, ok := s.parent.blobs[s.key]
	s.parent.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decodeItems(blob), nil
}

func (s *memoryStore) Save(ctx context.Context, items []cart.LineItem) error {
	data, err := encodeItems(items)
	if err != nil {
		return err
	}
	s.parent.mu.Lock()
	s.parent.blobs[s.key] = data
	s.parent.mu.Unlock()
	return nil
}

func (s *memoryStore) Clear(ctx context.Context) error {
	s.parent.mu.Lock()
	delete(s.parent.blobs, s.key)
	s.parent.mu.Unlock()
	return nil
}

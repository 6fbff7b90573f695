package repositories

import (
	"context"
	"sync"
)

type memoryKVStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryKVStore returns a process-local store. State is lost on restart.
func NewMemoryKVStore() KVStore {
	return &memoryKVStore{blobs: make(map[string][]byte)}
}

func (s *memoryKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.blobs[key]
	if !ok {
		return nil, ErrStateNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *memoryKVStore) Put(ctx context.Context, entries ...Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if e.Value == nil {
			delete(s.blobs, e.Key)
			continue
		}
		s.blobs[e.Key] = append([]byte(nil), e.Value...)
	}
	return nil
}

func (s *memoryKVStore) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.blobs, key)
	}
	return nil
}

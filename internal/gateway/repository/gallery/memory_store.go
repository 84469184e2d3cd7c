package gallery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type record struct {
	item  Item
	image []byte
}

type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]record)}
}

func (s *MemoryStore) Put(_ context.Context, item Item, image []byte) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if err := checkItem(item, image); err != nil {
		return err
	}
	item.Size = int64(len(image))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = record{item: item, image: append([]byte(nil), image...)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Item, []byte, error) {
	if s == nil {
		return Item{}, nil, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.items[strings.TrimSpace(id)]
	if !ok {
		return Item{}, nil, ErrNotFound
	}
	return rec.item, append([]byte(nil), rec.image...), nil
}

func (s *MemoryStore) GetURL(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.items[strings.TrimSpace(id)]; !ok {
		return "", ErrNotFound
	}
	return "", nil
}

func (s *MemoryStore) List(_ context.Context) ([]Item, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	out := make([]Item, 0, len(s.items))
	for _, rec := range s.items {
		out = append(out, rec.item)
	}
	s.mu.RUnlock()
	sort.Slice(out, newestFirst(out))
	return out, nil
}

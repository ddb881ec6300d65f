package store

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/filehub/internal/common"
)

// MemoryStore is a Store kept entirely in process memory. It is the default
// driver for tests and local experiments; nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	t := make(map[string]map[string][]byte, len(tables))
	for _, name := range tables {
		t[name] = make(map[string][]byte)
	}
	return &MemoryStore{tables: t}
}

func (s *MemoryStore) table(name string) (map[string][]byte, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, common.ErrorUnknownTable
	}
	return t, nil
}

func (s *MemoryStore) Get(ctx context.Context, table, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(table)
	if err != nil {
		return nil, err
	}
	data, ok := t[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, table, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(table)
	if err != nil {
		return err
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	t[key] = stored
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, table, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(table)
	if err != nil {
		return false, err
	}
	_, ok := t[key]
	return ok, nil
}

func (s *MemoryStore) Scan(ctx context.Context, table string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(table)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(t))
	for k, v := range t {
		data := make([]byte, len(v))
		copy(data, v)
		records = append(records, Record{Key: k, Data: data})
	}
	return records, nil
}

package globals

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory implementation for scaffolding and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]*Record)}
}

func (m *MemoryRepository) GetBySlug(_ context.Context, slug string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "global", Key: slug}
	}
	return cloneRecord(rec), nil
}

func (m *MemoryRepository) Create(_ context.Context, record *Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneRecord(record)
	m.records[copied.Slug] = copied
	return cloneRecord(copied), nil
}

func (m *MemoryRepository) Update(_ context.Context, record *Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[record.Slug]; !ok {
		return nil, &NotFoundError{Resource: "global", Key: record.Slug}
	}
	copied := cloneRecord(record)
	m.records[copied.Slug] = copied
	return cloneRecord(copied), nil
}

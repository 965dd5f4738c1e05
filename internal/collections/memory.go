package collections

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory implementation for scaffolding and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
}

// NewMemoryRepository creates an empty in-memory document repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[uuid.UUID]*Record)}
}

func (m *MemoryRepository) Create(_ context.Context, record *Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneRecord(record)
	m.records[copied.ID] = copied
	return cloneRecord(copied), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, collection string, id uuid.UUID) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok || rec.Collection != collection {
		return nil, &NotFoundError{Resource: collection, Key: id.String()}
	}
	return cloneRecord(rec), nil
}

func (m *MemoryRepository) List(_ context.Context, query ListQuery) ([]*Record, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*Record, 0)
	for _, rec := range m.records {
		if query.Collection != "" && rec.Collection != query.Collection {
			continue
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() > matched[j].ID.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := min(max(query.Offset, 0), total)
	end := total
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}
	out := make([]*Record, 0, end-start)
	for _, rec := range matched[start:end] {
		out = append(out, cloneRecord(rec))
	}
	return out, total, nil
}

func (m *MemoryRepository) Update(_ context.Context, record *Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[record.ID]; !ok {
		return nil, &NotFoundError{Resource: record.Collection, Key: record.ID.String()}
	}
	copied := cloneRecord(record)
	m.records[copied.ID] = copied
	return cloneRecord(copied), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, id)
	return nil
}

package versions

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory implementation for scaffolding and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Version
}

// NewMemoryRepository creates an empty in-memory version repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[uuid.UUID]*Version)}
}

func (m *MemoryRepository) Create(_ context.Context, record *Version) (*Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneVersion(record)
	m.records[copied.ID] = copied
	return cloneVersion(copied), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{Resource: "version", Key: id.String()}
	}
	return cloneVersion(rec), nil
}

func (m *MemoryRepository) Latest(_ context.Context, parent Parent) (*Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *Version
	for _, rec := range m.records {
		if !matchesParent(rec, parent) {
			continue
		}
		if latest == nil || rec.Version > latest.Version {
			latest = rec
		}
	}
	if latest == nil {
		return nil, &NotFoundError{Resource: "version", Key: parent.String()}
	}
	return cloneVersion(latest), nil
}

func (m *MemoryRepository) List(_ context.Context, filter ListFilter) ([]*Version, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*Version, 0)
	for _, rec := range m.records {
		if !matchesParent(rec, filter.Parent) {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Version > matched[j].Version
	})

	total := len(matched)
	start := min(max(filter.Offset, 0), total)
	end := total
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	out := make([]*Version, 0, end-start)
	for _, rec := range matched[start:end] {
		out = append(out, cloneVersion(rec))
	}
	return out, total, nil
}

func (m *MemoryRepository) ClearLatest(_ context.Context, parent Parent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.records {
		if matchesParent(rec, parent) {
			rec.Latest = false
		}
	}
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.records, id)
	}
	return nil
}

func (m *MemoryRepository) DeleteByParent(_ context.Context, parent Parent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, rec := range m.records {
		if matchesParent(rec, parent) {
			delete(m.records, id)
		}
	}
	return nil
}

func matchesParent(rec *Version, parent Parent) bool {
	if rec == nil {
		return false
	}
	if parent.Kind != "" && rec.ParentType != parent.Kind {
		return false
	}
	if parent.Slug != "" && rec.Parent != parent.Slug {
		return false
	}
	if parent.ID != uuid.Nil && rec.ParentID != parent.ID {
		return false
	}
	return true
}

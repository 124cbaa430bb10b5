package funfacts

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a Store held in process memory. Records are copied on the
// way in and out so callers never share slices with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		now:     time.Now,
	}
}

func (m *MemoryStore) FindOne(_ context.Context, code string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, code)
	}
	return rec.Clone(), nil
}

func (m *MemoryStore) FindAll(_ context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, *rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StateCode < out[j].StateCode })
	return out, nil
}

func (m *MemoryStore) Create(_ context.Context, code string, facts []string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[code]; ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordExists, code)
	}
	now := m.now()
	rec := &Record{
		StateCode: code,
		Funfacts:  append([]string(nil), facts...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.records[code] = rec
	return rec.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, rec *Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[rec.StateCode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, rec.StateCode)
	}
	saved := rec.Clone()
	saved.CreatedAt = existing.CreatedAt
	saved.UpdatedAt = m.now()
	m.records[rec.StateCode] = saved
	return saved.Clone(), nil
}

package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. Used by tests and throwaway dev runs.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
	now     func() time.Time
}

var (
	_ Store   = (*MemoryStore)(nil)
	_ Sweeper = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[rec.ID]
	switch {
	case !ok && rec.Version != 0:
		return ErrVersionConflict
	case ok && current.Version != rec.Version:
		return ErrVersionConflict
	}

	rec.Version++
	rec.UpdatedAt = m.now().UTC()
	m.records[rec.ID] = rec.Clone()
	return nil
}

func (m *MemoryStore) Touch(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.records[id]; ok {
		rec.UpdatedAt = m.now().UTC()
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, id)
	return nil
}

func (m *MemoryStore) DeleteIdleSince(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, rec := range m.records {
		if rec.UpdatedAt.Before(cutoff) {
			delete(m.records, id)
			n++
		}
	}
	return n, nil
}

// Len reports how many records are stored
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

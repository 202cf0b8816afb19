package persist

import (
	"context"
	"sync"
)

// MemoryStore keeps records in a map. Nothing survives the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]string)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id string) ([]string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	patterns, ok := m.records[id]
	return cloneRecord(patterns), ok, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, id string, patterns []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(patterns) == 0 {
		delete(m.records, id)
		return nil
	}
	m.records[id] = cloneRecord(patterns)
	return nil
}

// Remove implements Store.
func (m *MemoryStore) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, id)
	return nil
}

// Rename implements Store.
func (m *MemoryStore) Rename(_ context.Context, oldID, newID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	patterns, ok := m.records[oldID]
	if !ok || oldID == newID {
		return nil
	}
	delete(m.records, oldID)
	m.records[newID] = patterns
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }

// Len returns the number of records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

package db

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/cv-assistant/internal/types"
)

// MemoryStore keeps everything in process memory. Used by tests and --ephemeral.
type MemoryStore struct {
	mu          sync.RWMutex
	values      map[string]string
	generations []types.GenerationRecord
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value stored under key, or "" if it was never set
func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

// Set stores value under key
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete removes key
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// SaveGeneration stores a copy of rec, assigning an ID if needed
func (m *MemoryStore) SaveGeneration(_ context.Context, rec *types.GenerationRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations = append(m.generations, *rec)
	return nil
}

// ListGenerations returns the most recent generations first
func (m *MemoryStore) ListGenerations(_ context.Context, limit int) ([]types.GenerationRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	m.mu.RLock()
	records := make([]types.GenerationRecord, len(m.generations))
	copy(records, m.generations)
	m.mu.RUnlock()

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].GeneratedAt.After(records[j].GeneratedAt)
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// GetGeneration retrieves a generation by ID
func (m *MemoryStore) GetGeneration(_ context.Context, id uuid.UUID) (*types.GenerationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.generations {
		if m.generations[i].ID == id {
			rec := m.generations[i]
			return &rec, nil
		}
	}
	return nil, nil
}

// Close is a no-op
func (m *MemoryStore) Close() error {
	return nil
}

// internal/storage/run/memory.go
package run

import (
	"context"
	"sync"

	"github.com/minjia/goldgap/internal/core"
)

// MemoryStore is a capacity-bounded in-memory run store. Serve mode
// keeps recent runs here; nothing is persisted to disk.
type MemoryStore struct {
	mu      sync.RWMutex
	runs    []*core.Run
	maxSize int
}

// NewMemoryStore creates a new in-memory store with max capacity.
func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize < 1 {
		maxSize = 1
	}
	return &MemoryStore{
		runs:    make([]*core.Run, 0, maxSize),
		maxSize: maxSize,
	}
}

// Save adds a run to the store, evicting the oldest beyond capacity.
func (m *MemoryStore) Save(ctx context.Context, run *core.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs = append(m.runs, run)
	if len(m.runs) > m.maxSize {
		m.runs = m.runs[len(m.runs)-m.maxSize:]
	}
	return nil
}

// Latest returns the most recent run.
func (m *MemoryStore) Latest(ctx context.Context) (*core.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.runs) == 0 {
		return nil, core.ErrNotFound
	}
	return m.runs[len(m.runs)-1], nil
}

// GetByID retrieves a run by ID.
func (m *MemoryStore) GetByID(ctx context.Context, id string) (*core.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.runs) - 1; i >= 0; i-- {
		if m.runs[i].ID == id {
			return m.runs[i], nil
		}
	}
	return nil, core.ErrNotFound
}

// List returns up to limit runs, newest first. limit <= 0 means all.
func (m *MemoryStore) List(ctx context.Context, limit int) ([]*core.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.runs)
	if limit <= 0 || limit > n {
		limit = n
	}

	result := make([]*core.Run, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		result = append(result, m.runs[i])
	}
	return result, nil
}

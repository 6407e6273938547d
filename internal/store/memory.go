package store

import (
	"context"
	"sync"
	"time"

	apperrors "portfolio-analyzer/internal/errors"
)

// MemoryStore implements Store in process memory. Values vanish on exit.
type MemoryStore struct {
	mu      sync.RWMutex
	slots   map[Slot][]byte
	updated map[Slot]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		slots:   make(map[Slot][]byte),
		updated: make(map[Slot]time.Time),
	}
}

// Put replaces the value held in slot.
func (m *MemoryStore) Put(_ context.Context, slot Slot, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)

	m.mu.Lock()
	m.slots[slot] = cp
	m.updated[slot] = time.Now()
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the value held in slot.
func (m *MemoryStore) Get(_ context.Context, slot Slot) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.slots[slot]
	if !ok {
		return nil, apperrors.ErrSlotEmpty
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

// Clear removes the value held in slot.
func (m *MemoryStore) Clear(_ context.Context, slot Slot) error {
	m.mu.Lock()
	delete(m.slots, slot)
	delete(m.updated, slot)
	m.mu.Unlock()
	return nil
}

// UpdatedAt returns when slot was last written, or the zero time.
func (m *MemoryStore) UpdatedAt(_ context.Context, slot Slot) time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.updated[slot]
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

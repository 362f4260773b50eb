package snapshot

import (
	"context"
	"sync"

	"github.com/pumptrack/pumptrack/internal/domain/model"
)

// MemoryStore is an in-process Store for single-instance deployments
// that run without Redis. Snapshots do not survive a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]model.SnapshotEntry
}

// NewMemory constructs an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		slots: make(map[string][]model.SnapshotEntry),
	}
}

// Read returns a copy of the stored entries for slot, or nil when the
// slot has never been written.
func (s *MemoryStore) Read(_ context.Context, slot string) ([]model.SnapshotEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.slots[slot]
	if !ok {
		return nil, nil
	}
	entries := make([]model.SnapshotEntry, len(stored))
	copy(entries, stored)
	return entries, nil
}

// Write stores a copy of entries under slot.
func (s *MemoryStore) Write(_ context.Context, slot string, entries []model.SnapshotEntry) error {
	stored := make([]model.SnapshotEntry, len(entries))
	copy(stored, entries)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot] = stored
	return nil
}

package snapshot

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/bakelab/levain/internal/domain"
)

// Compile-time interface check.
var _ domain.SnapshotStore = (*MemoryStore)(nil)

// MemoryStore holds the snapshot in memory. The payload is round-tripped
// through JSON so it behaves exactly like the durable store.
type MemoryStore struct {
	mu      sync.Mutex
	payload []byte
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save overwrites the stored snapshot.
func (s *MemoryStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.payload = payload
	s.mu.Unlock()
	return nil
}

// Load returns the stored snapshot, or (nil, nil) when empty or unreadable.
func (s *MemoryStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	s.mu.Lock()
	payload := s.payload
	s.mu.Unlock()

	if payload == nil {
		return nil, nil
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, nil
	}
	return &snap, nil
}

// Clear erases the stored snapshot.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.payload = nil
	s.mu.Unlock()
	return nil
}

// Corrupt replaces the payload with garbage. Test helper.
func (s *MemoryStore) Corrupt() {
	s.mu.Lock()
	s.payload = []byte("{not json")
	s.mu.Unlock()
}

package portfolio

import (
	"context"
	"sync"
)

// snapshotKey is the fixed key under which the serialized ledger lives.
const snapshotKey = "cryptoPortfolio"

// SnapshotStore is the durable key-value primitive backing the ledger. The
// snapshot is loaded once at startup and fully rewritten on every mutation.
type SnapshotStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// MemSnapshotStore keeps snapshots in process memory. Meant for tests and
// throwaway sessions; nothing survives a restart.
type MemSnapshotStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemSnapshotStore creates an empty in-memory store.
func NewMemSnapshotStore() *MemSnapshotStore {
	return &MemSnapshotStore{values: make(map[string]string)}
}

func (s *MemSnapshotStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemSnapshotStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

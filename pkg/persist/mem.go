package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemStore keeps snapshots in memory. Snapshots round-trip through JSON
// so loads return detached data with wire-equivalent types, matching
// what a remote backend would hand back.
type MemStore struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewMemStore returns an empty in-memory snapshot store.
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string][]byte)}
}

func (m *MemStore) Save(ctx context.Context, key string, snapshot map[string]any) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot %q: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = data
	return nil
}

func (m *MemStore) Load(ctx context.Context, key string) (map[string]any, error) {
	m.mu.Lock()
	data, ok := m.entries[key]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	var snapshot map[string]any
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot %q: %w", key, err)
	}
	return snapshot, nil
}

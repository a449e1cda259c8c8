// Package persist saves and loads store snapshots. It is a collaborator
// layer: everything here goes through the store's snapshot surface, the
// reactive core never depends on it.
package persist

import (
	"context"
	"errors"

	"github.com/ripplestate/ripple/pkg/store"
)

// ErrNotFound is returned by Load when no snapshot exists under the key.
var ErrNotFound = errors.New("persist: snapshot not found")

// SnapshotStore persists plain state snapshots under string keys.
type SnapshotStore interface {
	// Save writes the snapshot, replacing any previous one.
	Save(ctx context.Context, key string, snapshot map[string]any) error

	// Load returns the snapshot stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) (map[string]any, error)
}

// Checkpoint captures st's current state into ss under key.
func Checkpoint(ctx context.Context, ss SnapshotStore, key string, st *store.Store) error {
	return ss.Save(ctx, key, st.GetState())
}

// Hydrate loads the snapshot under key and restores st to it. Computed
// members registered on st re-derive from the restored data.
func Hydrate(ctx context.Context, ss SnapshotStore, key string, st *store.Store) error {
	snapshot, err := ss.Load(ctx, key)
	if err != nil {
		return err
	}
	st.Restore(snapshot)
	return nil
}

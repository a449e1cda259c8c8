// Package history records store snapshots into a bounded, indexed log and
// restores them, giving a store undo/redo-style time travel.
//
//	s := store.New(map[string]any{"count": 0})
//	h := history.New(s, history.WithMaxEntries(50))
//	defer h.Destroy()
//
//	s.Set("count", 1)
//	s.Set("count", 2)
//	h.Back()              // store reads count=1 again
//	s.Set("count", 99)    // entries after the travel point are discarded
//
// The log is branch-on-write: mutating after traveling backward truncates
// the "future" entries, exactly like a conventional undo/redo stack. When
// the log is full the oldest entry is evicted and the current index shifts
// down by one, so the log never exceeds its cap and relative order is
// preserved.
//
// Snapshots are plain data with computed values inlined. Restoring goes
// through the store's restore path, which leaves computed members
// registered so they re-derive from the restored fields — a travel never
// leaves a computed key stale or missing.
package history

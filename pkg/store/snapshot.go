package store

import "github.com/ripplestate/ripple/pkg/reactive"

// GetState returns a plain, detached deep snapshot of the store. Nested
// stores become plain maps, slices are copied, and computed members are
// inlined as their current values — the result is JSON-serializable and
// safe to hand out; mutating it never touches the store.
//
// Snapshot production is untracked: taking one creates no dependencies.
func (s *Store) GetState() map[string]any {
	var state map[string]any
	reactive.Untracked(func() {
		state = s.snapshot()
	})
	return state
}

func (s *Store) snapshot() map[string]any {
	s.mu.RLock()
	sigs := make(map[string]*reactive.Signal[any], len(s.signals))
	for key, sig := range s.signals {
		sigs[key] = sig
	}
	comps := make(map[string]*Computed, len(s.computeds))
	for key, c := range s.computeds {
		comps[key] = c
	}
	s.mu.RUnlock()

	state := make(map[string]any, len(sigs)+len(comps))
	for key, sig := range sigs {
		state[key] = detach(sig.Peek())
	}
	for key, c := range comps {
		state[key] = detach(c.Peek())
	}
	return state
}

// detach converts a stored value into plain data.
func detach(value any) any {
	switch v := value.(type) {
	case *Store:
		return v.snapshot()
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, e := range v {
			out[key] = detach(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = detach(e)
		}
		return out
	default:
		return value
	}
}

// Restore writes a snapshot back into the live store: data keys are set
// through the normal write path, data keys absent from the snapshot are
// deleted, and computed members are left registered so their values
// re-derive from the restored data. History's time travel goes through
// here — a travel must never leave a computed key as stale plain data.
func (s *Store) Restore(snapshot map[string]any) {
	reactive.Batch(func() {
		s.mu.RLock()
		existing := make([]string, 0, len(s.signals))
		for key := range s.signals {
			existing = append(existing, key)
		}
		computed := make(map[string]bool, len(s.computeds))
		for key := range s.computeds {
			computed[key] = true
		}
		s.mu.RUnlock()

		for key, value := range snapshot {
			if computed[key] {
				// Snapshots carry the computed's materialized
				// value; the live member re-derives it instead.
				continue
			}
			s.Set(key, value)
		}

		for _, key := range existing {
			if _, present := snapshot[key]; !present {
				s.Delete(key)
			}
		}
	})
}

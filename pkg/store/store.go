package store

import (
	"sync"

	"github.com/ripplestate/ripple/pkg/reactive"
)

// Store is a reactive key/value container. Each key is backed by its own
// signal, so subscribers depend on exactly the keys they read. Nested
// map[string]any values are wrapped into child stores; assigning a map to a
// key replaces the whole subtree rather than merging into it.
//
// Store schemas are not fixed: writing a key that does not exist creates
// it, and reading a key that was never set yields nil.
type Store struct {
	mu sync.RWMutex

	// signals back the plain data keys. A child *Store is held as the
	// signal's value for nested maps.
	signals map[string]*reactive.Signal[any]

	// computeds are the derived members, kept apart from the signal graph
	// so snapshots can inline them and restores can skip them.
	computeds map[string]*Computed

	// version bumps on every effective change anywhere in this subtree.
	// Conservative subscribers (no narrowed dependency set yet) and
	// reads of missing keys track it.
	version *reactive.Signal[uint64]

	// parent links nested stores so child changes surface at the root.
	parent *Store
}

// New deep-wraps initial into a reactive store. The initial map is read,
// not retained: later mutations of it do not affect the store.
func New(initial map[string]any) *Store {
	s := newStore(nil)
	for key, value := range initial {
		s.Set(key, value)
	}
	return s
}

func newStore(parent *Store) *Store {
	return &Store{
		signals:   make(map[string]*reactive.Signal[any]),
		computeds: make(map[string]*Computed),
		version:   reactive.NewSignal(uint64(0)),
		parent:    parent,
	}
}

// Get returns the value at key, subscribing the active listener to it.
// Computed keys are invoked and return their current value. Nested maps
// come back as *Store. A missing key yields nil and tracks the store
// itself, so the listener re-runs once the key appears.
func (s *Store) Get(key string) any {
	s.mu.RLock()
	sig := s.signals[key]
	comp := s.computeds[key]
	s.mu.RUnlock()

	if comp != nil {
		return comp.Value()
	}
	if sig != nil {
		return sig.Get()
	}

	_ = s.version.Get()
	return nil
}

// Peek returns the value at key without subscribing.
func (s *Store) Peek(key string) any {
	s.mu.RLock()
	sig := s.signals[key]
	comp := s.computeds[key]
	s.mu.RUnlock()

	if comp != nil {
		return comp.Peek()
	}
	if sig != nil {
		return sig.Peek()
	}
	return nil
}

// Set writes value to key through the key's signal. Writing a value equal
// to the current one (by the store's equality rule: value equality for
// primitives, identity for containers) fires nothing. Writing a
// map[string]any replaces the subtree with a fresh child store. Writing a
// *Computed registers it as a derived member instead of data.
func (s *Store) Set(key string, value any) {
	if c, ok := value.(*Computed); ok && c != nil {
		s.setComputed(key, c)
		return
	}

	wrapped := s.wrap(value)

	s.mu.Lock()
	if _, wasComputed := s.computeds[key]; wasComputed {
		delete(s.computeds, key)
	}
	sig := s.signals[key]
	created := sig == nil
	if created {
		sig = reactive.NewSignal[any](nil).WithEquals(storeEqual)
		s.signals[key] = sig
	}
	s.mu.Unlock()

	if storeEqual(sig.Peek(), wrapped) {
		// A brand-new key is a change even when its first value equals
		// the signal's nil zero value.
		if created {
			s.markChanged()
		}
		return
	}

	sig.Set(wrapped)
	s.markChanged()
}

func (s *Store) setComputed(key string, c *Computed) {
	s.mu.Lock()
	s.computeds[key] = c
	delete(s.signals, key)
	s.mu.Unlock()

	s.markChanged()
}

// Delete removes key from the store and fires a change notification for
// its removal. Deleting a missing key is a no-op.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	sig := s.signals[key]
	_, hadComputed := s.computeds[key]
	delete(s.signals, key)
	delete(s.computeds, key)
	s.mu.Unlock()

	if sig == nil && !hadComputed {
		return
	}

	if sig != nil {
		// Listeners tracking this key observe the removal as nil. A key
		// already holding nil still notifies: the removal itself is the
		// change.
		if storeEqual(sig.Peek(), nil) {
			sig.Invalidate()
		} else {
			sig.Set(nil)
		}
	}
	s.markChanged()
}

// SetState shallow-merges partial into the store. Each key goes through the
// normal signal-write path, so partial updates stay granular. The merge is
// batched: subscribers see one notification wave.
func (s *Store) SetState(partial map[string]any) {
	reactive.Batch(func() {
		for key, value := range partial {
			s.Set(key, value)
		}
	})
}

// Keys returns the current key set (data and computed members), tracking
// the store so listeners re-run on structural changes.
func (s *Store) Keys() []string {
	_ = s.version.Get()

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.signals)+len(s.computeds))
	for key := range s.signals {
		keys = append(keys, key)
	}
	for key := range s.computeds {
		keys = append(keys, key)
	}
	return keys
}

// Computed returns the raw computed handle registered at key, or nil if the
// key holds plain data. This is the call-style access path for advanced use.
func (s *Store) Computed(key string) *Computed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.computeds[key]
}

// Batch runs fn with change notifications coalesced: however many writes fn
// performs, each affected subscriber is invoked once, after fn returns.
// Not a transaction — writes applied before a panic stay applied, and the
// panic propagates after the batch is closed out.
func (s *Store) Batch(fn func()) {
	reactive.Batch(fn)
}

// BeginBatch opens a manual batch scope; pair with CommitBatch. The pair
// may span asynchronous gaps but must run on the same goroutine.
func (s *Store) BeginBatch() {
	reactive.BeginBatch()
}

// CommitBatch closes a manual batch scope. Only the outermost commit
// flushes notifications.
func (s *Store) CommitBatch() {
	reactive.CommitBatch()
}

// wrap converts plain values into their reactive representation: nested
// maps become child stores. Slices and scalars are stored as-is; replacing
// a slice (identity change) counts as a change.
func (s *Store) wrap(value any) any {
	if m, ok := value.(map[string]any); ok {
		child := newStore(s)
		for key, v := range m {
			child.Set(key, v)
		}
		return child
	}
	return value
}

// markChanged bumps this store's version and every ancestor's, so
// subscribers at any level above the mutation get their wave.
func (s *Store) markChanged() {
	s.version.Update(func(v uint64) uint64 { return v + 1 })
	if s.parent != nil {
		s.parent.markChanged()
	}
}

// storeEqual is the store's write-suppression rule: value equality for
// primitives, identity for everything else. A fresh map or slice with the
// same contents still counts as a change.
func storeEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	switch av := a.(type) {
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case uint64:
		bv, ok := b.(uint64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case float32:
		bv, ok := b.(float32)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case *Store:
		bv, ok := b.(*Store)
		return ok && av == bv
	default:
		// Containers and unknown types compare by nothing: every write
		// is a change. Identity would need unsafe pointer comparison
		// for maps and slices; treating them as always-changed is the
		// conservative reading of replacement semantics.
		return false
	}
}

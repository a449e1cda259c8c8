package reactive

import (
	"sync"
	"sync/atomic"
)

// Memo is a cached computation that automatically tracks its dependencies.
// When any dependency changes, the memo is invalidated and recomputes on the
// next read.
//
// Memos are lazy: they only compute when Get or Peek is called. If multiple
// dependencies change before a read, the memo recomputes once.
//
// Memos can also be subscribed to, behaving like signals themselves, which
// allows chains of derived values. A memo's dirty flag is set synchronously
// on any dependency write, even inside a batch.
type Memo[T any] struct {
	base signalBase

	// compute is the derivation function. It must be pure with respect to
	// the sources it reads.
	compute func() T

	// value is the cached computed value.
	value T

	// valueMu protects value access.
	valueMu sync.RWMutex

	// valid indicates whether the cached value is current.
	// When false, the next Get recomputes.
	valid atomic.Bool

	// sources are the signals/memos read during the last computation.
	sources   []Source
	sourcesMu sync.Mutex

	// computeMu serializes recomputation across goroutines.
	computeMu sync.Mutex

	// computingGID is the id of the goroutine currently evaluating the
	// derivation, 0 when idle. A Get re-entering on the same goroutine is
	// a dependency cycle; a different goroutine just waits on computeMu.
	computingGID atomic.Uint64
}

// NewMemo creates a new memo with the given computation function.
// The computation does not run until the first Get.
func NewMemo[T any](compute func() T) *Memo[T] {
	return &Memo[T]{
		base: signalBase{
			id: NextID(),
		},
		compute: compute,
	}
}

// Get returns the memo's value, recomputing if a dependency changed since
// the last evaluation. Subscribes the current listener to this memo.
func (m *Memo[T]) Get() T {
	track(&m.base, m)

	if !m.valid.Load() {
		m.recompute()
	}

	m.valueMu.RLock()
	value := m.value
	m.valueMu.RUnlock()
	return value
}

// Peek returns the memo's value without subscribing.
// Still recomputes if the cached value is stale.
func (m *Memo[T]) Peek() T {
	if !m.valid.Load() {
		m.recompute()
	}
	m.valueMu.RLock()
	value := m.value
	m.valueMu.RUnlock()
	return value
}

// MarkDirty invalidates the memo and propagates to subscribers.
// Implements the Listener interface.
func (m *Memo[T]) MarkDirty() {
	// CAS makes repeated invalidation idempotent: only the first write
	// since the last recompute propagates downstream.
	if m.valid.CompareAndSwap(true, false) {
		m.base.notifySubscribers()
	}
}

// marksEagerly tags memos for synchronous invalidation during batches.
func (m *Memo[T]) marksEagerly() {}

// ID returns the unique identifier for this memo.
// Implements the Listener interface.
func (m *Memo[T]) ID() uint64 {
	return m.base.id
}

// AddSource records a dependency read during computation.
// Implements the SourceTracker interface.
func (m *Memo[T]) AddSource(source Source) {
	m.sourcesMu.Lock()
	defer m.sourcesMu.Unlock()

	for _, s := range m.sources {
		if s == source {
			return
		}
	}
	m.sources = append(m.sources, source)
}

// Subscribe adds a listener to this memo. Implements Source.
func (m *Memo[T]) Subscribe(l Listener) {
	m.base.subscribe(l)
}

// Unsubscribe removes a listener from this memo. Implements Source.
func (m *Memo[T]) Unsubscribe(l Listener) {
	m.base.unsubscribe(l)
}

// recompute runs the derivation and updates the cached value.
//
// Dependencies are re-collected on every run: the memo unsubscribes from its
// previous sources first, so conditional reads narrow the dependency set.
//
// A derivation that panics leaves the previous cached value and the dirty
// flag intact; the panic propagates to the reader, and a later read retries.
func (m *Memo[T]) recompute() {
	gid := getGoroutineID()
	if m.computingGID.Load() == gid {
		// Re-entered on the computing goroutine: the derivation reads
		// itself, directly or through another memo. Surfacing this as
		// a panic beats the alternative, which is unbounded recursion.
		panic("reactive: memo dependency cycle detected")
	}

	m.computeMu.Lock()
	defer m.computeMu.Unlock()

	// Another goroutine may have finished the recompute while this one
	// waited for the lock.
	if m.valid.Load() {
		return
	}

	m.computingGID.Store(gid)
	defer m.computingGID.Store(0)

	m.sourcesMu.Lock()
	for _, source := range m.sources {
		source.Unsubscribe(m)
	}
	m.sources = m.sources[:0]
	m.sourcesMu.Unlock()

	old := setCurrentListener(m)
	defer setCurrentListener(old)

	newValue := m.compute()

	m.valueMu.Lock()
	m.value = newValue
	m.valueMu.Unlock()

	m.valid.Store(true)
}

var (
	_ Source        = (*Memo[int])(nil)
	_ SourceTracker = (*Memo[int])(nil)
	_ eagerListener = (*Memo[int])(nil)
)

package reactive

import (
	"sync"
	"sync/atomic"
)

// Effect is a reactive side effect that re-runs when its dependencies
// change. The effect function runs immediately on creation and is tracked:
// every signal or memo it reads becomes a dependency. It may return a
// Cleanup that runs before the next execution and on Dispose.
type Effect struct {
	id uint64

	// fn is the effect function.
	fn func() Cleanup

	// cleanup is the cleanup from the last run.
	cleanup Cleanup

	// sources are the dependencies collected during the last run.
	sources   []Source
	sourcesMu sync.Mutex

	// disposed indicates the effect has been disposed.
	disposed atomic.Bool
}

// NewEffect creates and immediately runs a new effect.
//
// Example:
//
//	e := NewEffect(func() Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return nil
//	})
//	defer e.Dispose()
func NewEffect(fn func() Cleanup) *Effect {
	e := &Effect{
		id: NextID(),
		fn: fn,
	}
	e.run()
	return e
}

// OnUpdate creates an effect that skips the callback on the first run.
// deps is called on every run to establish dependencies; callback only
// fires on subsequent runs when those dependencies changed.
//
// Example:
//
//	OnUpdate(
//	    func() { _ = count.Get() },
//	    func() { fmt.Println("count changed") },
//	)
func OnUpdate(deps func(), callback func()) *Effect {
	first := true
	return NewEffect(func() Cleanup {
		deps()
		if first {
			first = false
			return nil
		}
		callback()
		return nil
	})
}

// MarkDirty re-runs the effect. Implements the Listener interface.
// Inside a batch this is deferred to the batch flush, so a batch of writes
// re-runs the effect once.
func (e *Effect) MarkDirty() {
	e.run()
}

// ID returns the unique identifier for this effect.
// Implements the Listener interface.
func (e *Effect) ID() uint64 {
	return e.id
}

// AddSource records a dependency read during execution.
// Implements the SourceTracker interface.
func (e *Effect) AddSource(source Source) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	for _, s := range e.sources {
		if s == source {
			return
		}
	}
	e.sources = append(e.sources, source)
}

// run executes the effect function with fresh dependency collection.
func (e *Effect) run() {
	if e.disposed.Load() {
		return
	}

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.sourcesMu.Lock()
	for _, source := range e.sources {
		source.Unsubscribe(e)
	}
	e.sources = e.sources[:0]
	e.sourcesMu.Unlock()

	old := setCurrentListener(e)
	defer setCurrentListener(old)

	e.cleanup = e.fn()
}

// Dispose runs any pending cleanup and unsubscribes from all sources.
// A disposed effect never runs again; disposing twice is a no-op.
func (e *Effect) Dispose() {
	if e.disposed.Swap(true) {
		return
	}

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.sourcesMu.Lock()
	for _, source := range e.sources {
		source.Unsubscribe(e)
	}
	e.sources = nil
	e.sourcesMu.Unlock()
}

var _ SourceTracker = (*Effect)(nil)

package store

import (
	"sync"

	"github.com/ripplestate/ripple/pkg/reactive"
)

// subscriber is the listener behind Store.Subscribe. It re-runs the
// callback once per notification wave and re-collects its dependency set
// from the store reads the callback performs.
type subscriber struct {
	id uint64
	st *Store
	fn func(newState, oldState map[string]any)

	mu      sync.Mutex
	sources []reactive.Source
	last    map[string]any
	stopped bool
}

// Subscribe registers fn to run after changes to the store. fn receives the
// fresh snapshot and the previous one.
//
// fn runs under dependency tracking: store reads inside its body (Get,
// Keys) narrow the subscription to exactly those keys, so a callback that
// only reads "a" is not invoked when "b" changes. A callback that reads
// nothing keeps the conservative behavior of firing on every change.
// Within a batch, fn runs once per wave regardless of the write count.
//
// The returned unsubscribe function is idempotent.
func (s *Store) Subscribe(fn func(newState, oldState map[string]any)) func() {
	sub := &subscriber{
		id:   reactive.NextID(),
		st:   s,
		fn:   fn,
		last: s.GetState(),
	}

	// Until the first invocation narrows the set, depend on everything.
	s.version.Subscribe(sub)
	sub.sources = append(sub.sources, s.version)

	return func() {
		sub.stop()
	}
}

// MarkDirty runs the callback. Implements reactive.Listener; inside a batch
// the reactive layer defers this to the flush, which is what coalesces
// multiple writes into one invocation.
func (sub *subscriber) MarkDirty() {
	sub.mu.Lock()
	if sub.stopped {
		sub.mu.Unlock()
		return
	}
	old := sub.last
	sources := sub.sources
	sub.sources = nil
	sub.mu.Unlock()

	for _, src := range sources {
		src.Unsubscribe(sub)
	}

	newState := sub.st.GetState()

	reactive.WithListener(sub, func() {
		sub.fn(newState, old)
	})

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.stopped {
		// Unsubscribed from inside its own callback; drop anything the
		// tracked run picked up.
		for _, src := range sub.sources {
			src.Unsubscribe(sub)
		}
		sub.sources = nil
		return
	}
	if len(sub.sources) == 0 {
		// Callback read nothing: stay conservative.
		sub.st.version.Subscribe(sub)
		sub.sources = append(sub.sources, sub.st.version)
	}
	sub.last = newState
}

// ID implements reactive.Listener.
func (sub *subscriber) ID() uint64 {
	return sub.id
}

// AddSource implements reactive.SourceTracker: the signals and computeds
// read during the callback report themselves here.
func (sub *subscriber) AddSource(source reactive.Source) {
	sub.mu.Lock()
	defer sub.mu.Unlock()

	for _, s := range sub.sources {
		if s == source {
			return
		}
	}
	sub.sources = append(sub.sources, source)
}

// stop detaches the subscriber from every source. Safe to call repeatedly.
func (sub *subscriber) stop() {
	sub.mu.Lock()
	if sub.stopped {
		sub.mu.Unlock()
		return
	}
	sub.stopped = true
	sources := sub.sources
	sub.sources = nil
	sub.mu.Unlock()

	for _, src := range sources {
		src.Unsubscribe(sub)
	}
}

var (
	_ reactive.Listener      = (*subscriber)(nil)
	_ reactive.SourceTracker = (*subscriber)(nil)
)

// Package bridge adapts a reactive store to pull-based view layers. A
// view registers one render function; the connector re-renders it only
// when the store's snapshot actually changed, so redundant waves (equal
// writes, already-painted state) cost nothing downstream.
package bridge

import (
	"sync"

	"github.com/ripplestate/ripple/pkg/diff"
	"github.com/ripplestate/ripple/pkg/store"
)

// RenderFunc receives the current store snapshot. The snapshot is
// detached; mutating it does not touch the store.
type RenderFunc func(state map[string]any)

// Connect paints the view once with the current state, then re-invokes
// render whenever a change wave leaves the snapshot structurally
// different from the last one rendered. The returned function
// disconnects the view; it is idempotent.
func Connect(st *store.Store, render RenderFunc) (disconnect func()) {
	var mu sync.Mutex
	last := st.GetState()
	render(last)

	unsubscribe := st.Subscribe(func(newState, oldState map[string]any) {
		mu.Lock()
		defer mu.Unlock()
		if diff.Diff(last, newState) == nil {
			return
		}
		last = newState
		render(newState)
	})

	var once sync.Once
	return func() {
		once.Do(unsubscribe)
	}
}

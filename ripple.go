// Package ripple provides the public API for the ripple state library.
//
// This is the recommended import for most applications:
//
//	import "github.com/ripplestate/ripple"
//
// Usage:
//
//	st := ripple.NewStore(map[string]any{"count": 0})
//	st.Set("doubled", ripple.Compute(func() any {
//		return st.Get("count").(int) * 2
//	}))
//	stop := st.Subscribe(func(newState, oldState map[string]any) {
//		// react to changes
//	})
//	defer stop()
package ripple

import (
	"github.com/ripplestate/ripple/pkg/diff"
	"github.com/ripplestate/ripple/pkg/history"
	"github.com/ripplestate/ripple/pkg/reactive"
	"github.com/ripplestate/ripple/pkg/store"
)

// Store is a reactive key/value state container.
type Store = store.Store

// NewStore deep-wraps initial into a reactive store. Pass nil for an
// empty store.
func NewStore(initial map[string]any) *Store {
	return store.New(initial)
}

// Computed is a derived store member, recomputed from whatever it reads.
type Computed = store.Computed

// Compute wraps a derivation function for use as a store value.
func Compute(fn func() any) *Computed {
	return store.Compute(fn)
}

// IsComputed reports whether a value is a computed store member.
func IsComputed(v any) bool {
	return store.IsComputed(v)
}

// Delta is the structural difference between two snapshots.
type Delta = diff.Delta

// Diff computes the delta between two snapshots, nil when equal.
func Diff(oldState, newState map[string]any) Delta {
	return diff.Diff(oldState, newState)
}

// Apply patches a snapshot in place with a delta.
func Apply(target map[string]any, d Delta) {
	diff.Apply(target, d)
}

// History attaches a time-travel controller to a store.
func History(st *Store, opts ...history.Option) *history.Controller {
	return history.New(st, opts...)
}

// NewSignal creates a standalone reactive value outside any store.
func NewSignal[T any](initial T) *reactive.Signal[T] {
	return reactive.NewSignal(initial)
}

// NewMemo creates a standalone cached derivation.
func NewMemo[T any](compute func() T) *reactive.Memo[T] {
	return reactive.NewMemo(compute)
}

// Batch coalesces every change made inside fn into one notification wave.
func Batch(fn func()) {
	reactive.Batch(fn)
}

// Untracked runs fn without recording dependencies for the caller.
func Untracked(fn func()) {
	reactive.Untracked(fn)
}

package store

import "github.com/ripplestate/ripple/pkg/reactive"

// Computed is a derived store member. Assigning one to a store key makes
// reads of that key return the derivation's current value; GetState inlines
// it as plain data. The derivation is lazy and memoized: it recomputes only
// after one of the store keys it read has changed.
type Computed struct {
	memo *reactive.Memo[any]
}

// Compute creates a computed value from a derivation function. The function
// must be pure with respect to the store keys it reads.
func Compute(fn func() any) *Computed {
	return &Computed{memo: reactive.NewMemo(fn)}
}

// Value returns the current (possibly recomputed) value, subscribing the
// active listener. This is the call-style access path for holders of the
// raw handle.
func (c *Computed) Value() any {
	return c.memo.Get()
}

// Peek returns the current value without subscribing. Snapshots use it so
// that materializing state creates no dependencies.
func (c *Computed) Peek() any {
	return c.memo.Peek()
}

// Source exposes the computed as a subscribable dependency.
func (c *Computed) Source() reactive.Source {
	return c.memo
}

// IsComputed reports whether x is a computed store member. Never panics;
// returns false for nil and all plain values, including plain functions.
func IsComputed(x any) bool {
	c, ok := x.(*Computed)
	return ok && c != nil
}

// Package diff computes structural deltas between two plain snapshots and
// applies them back onto plain objects.
//
// A Delta is a nested map from property name to one of three entry shapes:
//
//	{"__old": a, "__new": b}  — value changed
//	{"__added": v}            — key only present in the new snapshot
//	{"__removed": v}          — key only present in the old snapshot
//
// Nested maps recurse under the same key; arrays are compared index by index
// with the decimal index as the key. Diff returns nil — not an empty map —
// when the snapshots are deeply equal, so callers can distinguish "no change"
// from "changed to an empty object".
//
// The representation round-trips through encoding/json unchanged, which is
// what the sync layer puts on the wire.
//
// Diff operates on plain snapshots. Store state must be materialized first
// (store.GetState inlines computed values); diffing live computed handles
// would always report a change, since function values never compare equal.
package diff

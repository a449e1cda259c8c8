package reactive

import "sync/atomic"

// globalIDCounter is the source of unique IDs for all reactive primitives.
var globalIDCounter uint64

// NextID returns the next unique ID for a reactive primitive.
// IDs are monotonically increasing and never reused. Exported so that
// higher layers (store subscribers) can implement Listener.
func NextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state for a goroutine.
// Each goroutine has its own context so that concurrent tracked
// computations do not observe each other's listeners or batch depth.
type trackingContext struct {
	// currentListener is what is currently tracking dependencies.
	// When a signal is read, it subscribes this listener.
	// nil means no tracking (reads have no side effect).
	currentListener Listener

	// batchDepth tracks nested Batch/BeginBatch calls.
	// When > 0, signal updates queue external notifications instead of
	// firing immediately.
	batchDepth int

	// pendingUpdates accumulates listeners to notify when the outermost
	// batch completes. Deduplicated by ID before notification.
	pendingUpdates []Listener
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// getGoroutineID returns a unique identifier for the current goroutine,
// parsed from the runtime stack header ("goroutine <id> ...").
// Implementation detail; never exposed.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ { // skip "goroutine "
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// getTrackingContext returns the tracking context for the current goroutine,
// creating it if needed.
func getTrackingContext() *trackingContext {
	gid := getGoroutineID()

	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}

	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// getCurrentListener returns the listener currently tracking dependencies,
// or nil when no tracking is active.
func getCurrentListener() Listener {
	return getTrackingContext().currentListener
}

// setCurrentListener installs a listener for dependency tracking and returns
// the previous one so it can be restored. The save/restore pairs form the
// tracking stack: nested tracked computations attribute each read to the
// innermost enclosing listener.
func setCurrentListener(l Listener) Listener {
	ctx := getTrackingContext()
	old := ctx.currentListener
	ctx.currentListener = l
	return old
}

func getBatchDepth() int {
	return getTrackingContext().batchDepth
}

func incrementBatchDepth() {
	getTrackingContext().batchDepth++
}

// decrementBatchDepth decreases the batch depth by 1 and reports whether the
// outermost batch just completed. Depth never goes below zero even if
// CommitBatch is called without a matching Begin.
func decrementBatchDepth() bool {
	ctx := getTrackingContext()
	if ctx.batchDepth == 0 {
		return false
	}
	ctx.batchDepth--
	return ctx.batchDepth == 0
}

// queuePendingUpdate records a listener for notification when the current
// batch completes.
func queuePendingUpdate(l Listener) {
	ctx := getTrackingContext()
	ctx.pendingUpdates = append(ctx.pendingUpdates, l)
}

// drainPendingUpdates returns and clears the pending updates queue.
func drainPendingUpdates() []Listener {
	ctx := getTrackingContext()
	updates := ctx.pendingUpdates
	ctx.pendingUpdates = nil
	return updates
}

// WithListener runs fn with l installed as the tracking listener.
// Sources read by fn subscribe l and, if l implements SourceTracker,
// report themselves via AddSource.
func WithListener(l Listener, fn func()) {
	old := setCurrentListener(l)
	defer setCurrentListener(old)
	fn()
}

// Untracked runs fn without tracking signal reads as dependencies.
// For single reads, Signal.Peek is clearer.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}

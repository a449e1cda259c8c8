package reactive

// Batch groups multiple signal updates into a single notification wave.
// All external listeners affected during the batch are collected,
// deduplicated by ID, and notified once (in first-affected order) when the
// outermost batch completes.
//
// Batches are not transactions: writes already applied when the function
// panics stay applied. The panic propagates after the batch depth is
// restored and pending notifications are flushed.
//
// Batches can be nested; only the outermost completion flushes.
//
// Example:
//
//	Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	})
//	// Subscribers notified once with both changes applied
func Batch(fn func()) {
	BeginBatch()
	defer CommitBatch()
	fn()
}

// BeginBatch opens a batch scope manually. Each BeginBatch must be paired
// with a CommitBatch; the pair may span asynchronous gaps but must run on
// the same goroutine, since batch state is goroutine-local.
func BeginBatch() {
	incrementBatchDepth()
}

// CommitBatch closes one batch scope. When the outermost scope closes, all
// pending notifications flush as one coalesced wave. Calling CommitBatch
// with no open batch is a no-op.
func CommitBatch() {
	if decrementBatchDepth() {
		processPendingUpdates()
	}
}

// IsBatchActive reports whether a batch is open on the current goroutine.
func IsBatchActive() bool {
	return getBatchDepth() > 0
}

// processPendingUpdates deduplicates and notifies all pending listeners.
func processPendingUpdates() {
	updates := drainPendingUpdates()
	if len(updates) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(updates))
	unique := make([]Listener, 0, len(updates))

	for _, listener := range updates {
		id := listener.ID()
		if !seen[id] {
			seen[id] = true
			unique = append(unique, listener)
		}
	}

	for _, listener := range unique {
		listener.MarkDirty()
	}
}

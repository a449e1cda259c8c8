package reactive

// Listener is anything that can be notified when a dependency changes.
// This interface is implemented by memos, effects, and store subscribers.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies changed.
	// For memos, this invalidates the cached value.
	// For effects and subscribers, this triggers a re-run.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during batch processing.
	ID() uint64
}

// Source is a dependency a listener can subscribe to. Both Signal and Memo
// implement it, so consumers can manage their tracked dependency sets
// without knowing which kind of cell they read.
type Source interface {
	// Subscribe adds the listener to this source's subscriber list.
	// Subscribing twice is a no-op.
	Subscribe(Listener)

	// Unsubscribe removes the listener. Removing a listener that is not
	// subscribed is a no-op.
	Unsubscribe(Listener)
}

// SourceTracker is implemented by listeners that keep a record of the
// sources they read, so they can unsubscribe before re-tracking.
// Sources call AddSource when they are read during tracking.
type SourceTracker interface {
	AddSource(Source)
}

// eagerListener marks listeners whose MarkDirty must fire synchronously on
// every write, even inside a batch. Memos implement it: staleness has to be
// visible to the very next read, while external notification waits for the
// batch to flush.
type eagerListener interface {
	Listener
	marksEagerly()
}

// Cleanup is a function returned by effects to clean up resources.
// It is called before the effect re-runs and when the effect is disposed.
type Cleanup func()

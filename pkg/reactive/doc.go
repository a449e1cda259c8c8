// Package reactive provides the signal-based reactivity core for Ripple.
//
// The model is fine-grained pull-based reactivity: dependencies are tracked
// automatically at runtime. Reading a signal while a listener is active
// subscribes that listener to the signal's changes.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	count := NewSignal(0)
//	value := count.Get()  // Read (subscribes current listener)
//	count.Set(5)          // Write (notifies subscribers if changed)
//	count.Update(func(n int) int { return n + 1 })
//
// Memo[T] is a cached derived computation:
//
//	doubled := NewMemo(func() int { return count.Get() * 2 })
//	value := doubled.Get()  // Recomputes only if dependencies changed
//
// Effect runs side effects when dependencies change:
//
//	NewEffect(func() Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return nil
//	})
//
// # Batching
//
// Multiple signal updates can be batched into a single notification wave:
//
//	Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})  // One notification per affected listener after both updates
//
// Memo invalidation is never deferred: writes mark dependent memos stale
// synchronously even inside a batch, so a memo read mid-batch observes the
// latest written values. Only external listeners (effects, store
// subscriptions) have their notifications coalesced.
//
// # Thread Safety
//
// All primitives are safe for use from multiple goroutines. The tracking
// context and batch depth are per-goroutine, so Begin/Commit pairs and
// tracked computations must stay on the goroutine that started them.
package reactive

// Package store turns a plain map-shaped object into fine-grained reactive
// state. Every key is backed by its own signal, nested maps become child
// stores, and subscribers are re-invoked only when a key they read changes.
//
//	s := store.New(map[string]any{
//	    "firstName": "Burt",
//	    "lastName":  "Macklin",
//	})
//	s.Set("fullName", store.Compute(func() any {
//	    return s.Get("firstName").(string) + " " + s.Get("lastName").(string)
//	}))
//
//	unsubscribe := s.Subscribe(func(state, old map[string]any) {
//	    fmt.Println(state["fullName"])
//	})
//	defer unsubscribe()
//
//	s.Set("firstName", "Michael") // subscriber sees "Michael Macklin"
//
// # Snapshots
//
// GetState returns a plain, detached, JSON-serializable copy of the state
// with computed values inlined. Mutating a snapshot never touches the store;
// all writes go through Set, SetState, Delete, or Batch.
//
// # Subscriptions
//
// A subscriber callback runs under dependency tracking: store reads inside
// the callback body narrow its dependency set to exactly those keys. Until
// it has read something — or if it reads nothing — it conservatively fires
// on every change. Within a batch, any number of writes produce one
// invocation per affected subscriber.
package store

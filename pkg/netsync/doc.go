// Package netsync mirrors a store across processes over a duplex channel.
//
// Each engine watches its local store; when state changes it computes the
// delta against the last synchronized snapshot and sends it as an envelope
//
//	{"clientId": "...", "changes": { ... delta ... }}
//
// over its channel. Received envelopes are applied to the local store,
// except the engine's own (echo suppression by clientId). Synchronization
// is best-effort, last-writer-wins per property: there is no causal
// ordering beyond arrival order on the channel, and a malformed envelope is
// dropped, never fatal.
//
// The channel is pluggable: Dial returns a websocket-backed channel for a
// relay such as the ripple hub, and Pipe returns an in-memory cross-wired
// pair for tests and same-process mirroring.
//
//	a, b := netsync.Pipe()
//	left := netsync.NewEngine(storeA, a)
//	right := netsync.NewEngine(storeB, b)
//	left.Start()
//	right.Start()
//	defer left.Close()
//	defer right.Close()
package netsync

// Package state provides the thread-safe snapshot store at the center of
// swarmview.
//
// # Overview
//
// The Store is the coordination point where transport updates meet
// rendering. Two producers write into it (the push stream and the polling
// fetcher) and any number of consumers read from it. It holds exactly one
// value: the most recently arrived complete simulation state.
//
//	Producers (transports):        Consumers (UI, coordinator):
//	┌────────────────────┐        ┌──────────────────────┐
//	│ stream event       │        │ store.Current()      │
//	│ poll result        │───────→│ store.Subscribe(...) │
//	│   store.Publish()  │ (mutex)│ store.Invalidate()   │
//	└────────────────────┘        └──────────────────────┘
//
// # Ordering
//
// Publish assigns each state its arrival sequence (Snapshot.Seq) at the
// moment it is stored. "Latest arrival wins" is therefore enforced by the
// store's own counter, never by wall-clock timestamps embedded in payloads;
// the two transports can have arbitrarily skewed latency. Subscribers are
// notified under a dedicated notification lock, so they always observe
// snapshots with strictly ascending sequence numbers and never a regression.
//
// # Update semantics
//
// A state is replaced atomically and wholesale; the store never merges
// fields from different arrivals. Transport failures go through RecordError,
// which keeps the previous payload and only increments the failure counter,
// so a transient network blip never blanks an otherwise-live view. Accepted
// mutations go through Invalidate, which flags the snapshot stale without
// synthesizing an optimistic local state: the server may transform a
// requested change before applying it, so only a fresh read is trusted.
//
// # Concurrency
//
// Store is safe to use from multiple goroutines and ready as its zero
// value. Publish and Current copy slices defensively; returned snapshots
// are never shared with the store's internal value.
package state

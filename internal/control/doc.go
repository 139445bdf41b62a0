// Package control dispatches operator commands to swarmd.
//
// The Coordinator arbitrates write access to the remote simulation. Every
// accepted mutation invalidates the snapshot store and requests a refresh
// through the transport manager, so the next read (via whichever transport
// is currently authoritative) reflects the change. No optimistic local
// snapshot is ever synthesized.
//
// Creation commands carry an idempotency key owned by an Attempt: one key
// per logical attempt, reused across retries, never reused across distinct
// user decisions. Payloads are validated (and coordinates canonicalized by
// the wire types) before transmission; a ValidationError never reaches the
// network.
package control

// Package swarmd provides the HTTP and push-stream client for the swarmd
// simulation server API.
//
// # Overview
//
// Two transports read simulation state:
//
//   - Client.FetchState issues one GET /state request and returns a full
//     SimState. The transport manager polls it at a fixed cadence.
//   - Stream holds a long-lived server-sent-events connection to
//     /stream/state and emits each pushed SimState as it arrives, together
//     with Health transitions that describe whether the stream is actually
//     delivering data (live) or merely open (connecting/degraded).
//
// Writes go through Client as well: PatchJob for target assignment,
// activation toggles and drone-count changes; Pause and Restart for global
// control; CreateScenario for creation, which requires an Idempotency-Key
// so swarmd can deduplicate client-side retries.
//
// # Health model
//
// Stream owns the Health value. Transitions:
//
//	unopened → connecting   Open called
//	connecting → live       first parsed event
//	live → degraded         transport error or idle watchdog
//	degraded → live         any further parsed event
//	any → closed            Close called
//
// A malformed event is logged and dropped without a health change; one bad
// payload is not a transport failure.
//
// # Wire canonicalization
//
// Coordinates cross the wire as Coord values, which always marshal at nine
// decimal places and refuse NaN and infinities. Identical requests therefore
// serialize byte-identically, which makes retried scenario creations safely
// deduplicable server-side by content plus idempotency key.
//
// # Error handling
//
// Non-2xx responses surface as *APIError carrying status and path, so
// callers can distinguish a rejected command from a transport failure.
// Everything else is wrapped with fmt.Errorf("%w") context.
package swarmd

// Package feed keeps the snapshot store supplied with simulation state.
//
// # Transport arbitration
//
// Two transports can produce state: the push stream (swarmd.Stream) and the
// fixed-cadence poller owned by Manager. Select decides which one is
// authoritative as a pure function of two inputs, the view's activation
// flag and the stream's health, so the decision is testable without any
// runtime:
//
//	active?   health      selection
//	no        any         none
//	yes       live        stream
//	yes       otherwise   polling
//
// The poller never stops while the view is active: it keeps its one-second
// cadence even while the stream is authoritative, so a stream failure is
// covered on the very next poll with no warm-up. Its results are simply not
// published while the stream is selected.
//
// Switching from stream to polling never clears the last published
// snapshot; the most recent arrival from either transport stays visible
// until superseded. A momentary stream hiccup therefore never blanks the
// view.
//
// # Lifecycle
//
// Manager.Activate starts both transports; Manager.Deactivate cancels the
// poller and closes the stream before returning, which guarantees no late
// publish fires into consumers being torn down. Manager.Refresh requests an
// immediate out-of-band poll, used by the mutation coordinator after an
// accepted command.
//
// Catalog is a small read-through cache for the scenario listing with
// capped exponential backoff on failures.
package feed

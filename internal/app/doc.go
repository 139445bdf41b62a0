// Package app provides the orchestration layer for the swarmview application.
//
// # Overview
//
// This package wires together configuration, the feed transports, the shared
// snapshot store, the mutation coordinator, and the UI to create the complete
// swarmview TUI experience. It serves as the composition root where all
// dependencies are initialized and connected.
//
// # Architecture
//
// The app package follows a simple initialization pattern:
//
//  1. Load swarmview configuration from ~/.config/swarmview/config.toml
//  2. Initialize the HTTP client for swarmd API communication
//  3. Create the shared state.Store for transports, coordinator and UI
//  4. Activate the feed.Manager, which runs the poller and push stream
//  5. Build the control.Coordinator for mutations and the scenario catalog
//  6. Start the TUI and block until the user exits or the context cancels
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()         Read swarmview config
//	       ├─────> swarmd.NewClient()    Create HTTP client
//	       ├─────> state.Store{}         Shared snapshot container
//	       ├─────> feed.NewManager()     Poller + stream, arbitrated
//	       ├─────> control.NewCoordinator() Mutation dispatch
//	       └─────> ui.Run()              Start TUI (blocks)
//
//	Feed loop (owned by feed.Manager):
//	┌─────────────────────────────────────────┐
//	│ poller ticks every PollInterval         │
//	│ stream pushes state events when live    │
//	│  └─> store.Publish()  (atomic)          │
//	│      └─> UI receives via Subscribe      │
//	└─────────────────────────────────────────┘
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration file invalid
//   - swarmd client initialization failure
//
// Recoverable errors (logged, the feed keeps running):
//   - Periodic state fetch failures
//   - Stream drops and reconnect attempts
//   - Network timeouts during polling
//
// The manager is deactivated before Run returns, so no transport callback
// can fire after shutdown.
package app

// Package config loads swarmview's TOML configuration.
//
// The Load function resolves the config file (explicit path, or
// ~/.config/swarmview/config.toml by default) and falls back to sensible
// defaults when the file or individual fields are missing, so swarmview
// works out of the box against a local swarmd.
//
// Example config.toml:
//
//	server_url = "127.0.0.1:8470"
//	poll_interval_ms = 1000
//	stream = true
//	stream_retry_ms = 3000
//	stream_idle_timeout_ms = 15000
//
// All fields are optional. Tilde paths are expanded automatically. A missing
// file is not an error; a malformed one is.
package config

// Package config loads, normalizes, and validates speakd configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// SPEAKD_IDLE_TIMEOUT. All well-known filesystem objects the daemon touches
// (socket, lock, pid record, log, history database) are derived from the
// single data directory so other packages never assemble those paths
// themselves.
package config

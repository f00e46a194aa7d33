// Package history persists one record per generation request in SQLite.
//
// The daemon appends a row after every request it answers, success or error.
// The CLI reads the same database directly (read-only) for `speak history`.
// History is informational: write failures are logged by callers and never
// surfaced to clients, and the daemon core does not depend on it.
package history

// Package logging builds slog loggers for the speakd daemon and CLI.
//
// Output goes to stdout and to the shared append-only log file in the data
// directory, so restarts of the daemon keep appending to the same history.
// Two formats are supported: a compact console format for interactive use and
// JSON for machine consumption. Helpers mirror the slog attribute
// constructors so call sites stay terse.
package logging

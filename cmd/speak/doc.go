// Package main hosts the speak CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into socket
// requests against the daemon, launching it on demand when it is not yet
// running. It centralizes configuration resolution and socket discovery so
// subcommands stay small.
package main

// Package synth owns the speech-synthesis engine boundary.
//
// The daemon core never touches model internals; it talks to an Engine that
// loads once and produces ordered PCM chunks per request. The concrete
// implementation keeps the model resident in a helper child process and
// exchanges newline-delimited JSON with it over stdin/stdout. This package
// also writes the WAV container and manages the per-generation working
// directories.
//
// The Engine is a single non-reentrant resource. By contract it is called
// from exactly one goroutine at a time, so implementations carry no internal
// locking.
package synth

// Package daemon coordinates the long-running speakd process.
//
// It owns the lifecycle state machine (Starting -> Ready -> ShuttingDown ->
// Terminated), enforces single-instance execution through the flock handle,
// selects and runs exactly one watchdog (idle-timeout in default mode,
// parent-liveness in managed mode), and funnels every shutdown trigger --
// termination signal, watchdog firing, fatal listener error -- through one
// idempotent coordinator that tears down the socket and identity record and
// exits the process.
//
// Keep orchestration here: protocol handling lives in ipc, synthesis in
// synth. The daemon is the only place that wires them together.
package daemon

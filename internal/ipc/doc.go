// Package ipc implements the line-delimited JSON protocol between local
// clients and the daemon over a Unix domain socket.
//
// The contract is one request/response pair per connection: the client sends
// a single newline-terminated JSON object, the server answers with one
// newline-terminated JSON object and closes the connection. The socket file
// itself doubles as the readiness signal: launchers poll for its appearance
// before connecting, so the server binds it only once the daemon is ready
// to serve, and removes it on shutdown.
//
// Requests are served strictly one at a time. The synthesis engine is a
// single non-reentrant resource, so parallel handling would buy nothing and
// would force locking into the engine.
package ipc

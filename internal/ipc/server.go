package ipc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"speakd/internal/logging"
)

const (
	// acceptWait bounds how long the accept loop blocks before rechecking
	// the stop signal. This is the server's only suspension point, so it is
	// also the upper bound on shutdown latency from the accept side.
	acceptWait = 5 * time.Second
	// readTimeout bounds how long one connection may take to deliver its
	// request line.
	readTimeout = 10 * time.Second
	// writeTimeout bounds the response write; a stalled client must not
	// stall the daemon.
	writeTimeout = 10 * time.Second
)

// Handler serves parsed requests and observes connection activity.
type Handler interface {
	// Touch records request receipt. Called once per accepted connection,
	// before the request is read, so activity counts even when generation
	// later fails.
	Touch()
	// Handle produces the response for one request.
	Handle(ctx context.Context, req Request) Response
}

// Server accepts connections on a Unix socket and serves them one at a time.
type Server struct {
	path     string
	handler  Handler
	defaults Defaults
	logger   *slog.Logger
	listener *net.UnixListener
}

// NewServer removes any stale socket at path and binds a fresh listener.
// Binding is the last startup step in the daemon: the socket's appearance
// tells launchers the daemon is ready.
func NewServer(path string, handler Handler, defaults Defaults, logger *slog.Logger) (*Server, error) {
	if handler == nil {
		return nil, errors.New("ipc server requires a handler")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}

	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, fmt.Errorf("resolve socket address: %w", err)
	}
	listener, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	return &Server{
		path:     path,
		handler:  handler,
		defaults: defaults,
		logger:   logging.WithComponent(logger, "ipc"),
		listener: listener,
	}, nil
}

// Path returns the bound socket path.
func (s *Server) Path() string {
	return s.path
}

// Serve runs the accept loop until stop is closed or the listener fails.
// Connections are serviced strictly in sequence. A nil return means the loop
// ended because of stop or an intentional Close; any other listener failure
// is returned so the caller can route it into shutdown.
func (s *Server) Serve(stop <-chan struct{}) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		if err := s.listener.SetDeadline(time.Now().Add(acceptWait)); err != nil {
			return s.acceptFailure(stop, fmt.Errorf("set accept deadline: %w", err))
		}
		conn, err := s.listener.Accept()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return s.acceptFailure(stop, err)
		}
		s.handleConn(conn)
	}
}

func (s *Server) acceptFailure(stop <-chan struct{}, err error) error {
	select {
	case <-stop:
		// Listener was closed as part of shutdown.
		return nil
	default:
		return fmt.Errorf("accept: %w", err)
	}
}

// handleConn reads one request line, serves it, writes one response line.
// Every exit path closes the connection; write failures are swallowed
// because the client may already be gone.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	s.handler.Touch()

	if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		// Timed out or broke mid-read. If nothing arrived, drop silently;
		// otherwise tell the peer what happened.
		if len(bytes.TrimSpace(line)) == 0 {
			return
		}
		s.writeResponse(conn, Errorf("read request: %v", err))
		return
	}

	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		// Peer connected and said nothing (readiness probes do this).
		return
	}

	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		s.writeResponse(conn, Errorf("parse request: %v", err))
		return
	}
	req.applyDefaults(s.defaults)

	s.writeResponse(conn, s.serve(req))
}

// serve invokes the handler with panic containment: a bug in the generation
// path must never take down the accept loop.
func (s *Server) serve(req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("request handler panicked", logging.Args(logging.Any("panic", r))...)
			resp = Errorf("internal error: %v", r)
		}
	}()
	return s.handler.Handle(context.Background(), req)
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("marshal response", logging.Args(logging.Error(err))...)
		return
	}
	payload = append(payload, '\n')
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, _ = conn.Write(payload)
}

// Close stops the listener and removes the socket file, in that order.
// Closing the listener is what unblocks a pending accept wait. Safe to call
// more than once.
func (s *Server) Close() {
	_ = s.listener.Close()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("remove socket file", logging.Args(logging.String("socket", s.path), logging.Error(err))...)
	}
}

package ipc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

const dialTimeout = 2 * time.Second

// Client speaks the one-shot request protocol. Each Generate call uses a
// fresh connection, matching the server's one-pair-per-connection contract.
type Client struct {
	path string
	// Timeout bounds the wait for a response. Zero means wait indefinitely,
	// which is the default: generation time has no upper bound.
	Timeout time.Duration
}

// NewClient points a client at the daemon socket.
func NewClient(path string) *Client {
	return &Client{path: path}
}

// Generate sends one request and returns the daemon's response. A Response
// with status "error" is returned as-is, not as a Go error; Go errors mean
// the exchange itself failed.
func (c *Client) Generate(req Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.path, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon: %w", err)
	}
	defer conn.Close()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	payload = append(payload, '\n')

	_ = conn.SetWriteDeadline(time.Now().Add(dialTimeout))
	if _, err := conn.Write(payload); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if c.Timeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(c.Timeout))
	} else {
		_ = conn.SetReadDeadline(time.Time{})
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(bytes.TrimSpace(line), &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &resp, nil
}

// Ping reports whether something is accepting connections on the socket.
// It connects and immediately closes without sending data; the server drops
// such connections silently.
func Ping(path string) bool {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

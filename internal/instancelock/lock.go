// Package instancelock enforces single-instance execution for the daemon.
//
// The lock is an OS advisory flock held for the life of the process. Release
// happens when the process exits, whatever the exit path: the kernel drops
// the lock with the file descriptor, so a crash or SIGKILL can never leave a
// stale lock behind. No code path unlocks explicitly.
package instancelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning reports that another daemon instance holds the lock.
// Callers treat this as a normal, successful outcome, not a failure.
var ErrAlreadyRunning = errors.New("another speakd instance is already running")

// Handle owns the acquired lock and its identity record.
type Handle struct {
	lock    *flock.Flock
	pidPath string
}

// Acquire attempts a non-blocking exclusive lock on lockPath and, on success,
// writes the current process id to pidPath. The parent directory is created
// if absent. Returns ErrAlreadyRunning when another process holds the lock.
func Acquire(lockPath, pidPath string) (*Handle, error) {
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}

	// Safe to write: we hold the lock.
	pid := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(pidPath, []byte(pid), 0o644); err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("write pid record: %w", err)
	}

	return &Handle{lock: lock, pidPath: pidPath}, nil
}

// PIDPath returns the identity record location.
func (h *Handle) PIDPath() string {
	return h.pidPath
}

// ReadPID parses the identity record at path. Valid only while the lock
// holder is alive; it exists for diagnostics and for `speak stop`.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse pid record %s: %w", path, err)
	}
	return pid, nil
}

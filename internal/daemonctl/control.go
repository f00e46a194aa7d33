// Package daemonctl launches and stops the daemon on behalf of the CLI.
//
// The readiness contract is filesystem-based: a freshly launched daemon
// binds its socket only after the model is loaded, so callers poll for the
// socket file to appear rather than retrying connections against a process
// that is still loading.
package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"speakd/internal/config"
	"speakd/internal/instancelock"
)

const launchPollInterval = 200 * time.Millisecond

// LaunchOptions controls daemon process launch behavior.
type LaunchOptions struct {
	ConfigPath string
	Managed    bool
}

// Launch starts a detached speakd process. The child outlives the CLI.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return errors.New("resolve executable: executable path is empty")
	}

	var args []string
	if cfgPath := strings.TrimSpace(opts.ConfigPath); cfgPath != "" {
		args = append(args, "--config", cfgPath)
	}
	if opts.Managed {
		args = append(args, "--managed")
	}

	proc := exec.Command(executablePath, args...)
	proc.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// WaitForSocket polls for the socket file to appear, the daemon's readiness
// signal. Model loading dominates the wait, so timeouts should be generous.
func WaitForSocket(socketPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(socketPath); err == nil {
			return nil
		}
		time.Sleep(launchPollInterval)
	}
	return fmt.Errorf("daemon not ready after %s: socket %s never appeared", timeout, socketPath)
}

// Stop delivers SIGTERM to the pid in the identity record and waits for the
// socket to disappear. Returns false when no daemon appears to be running.
func Stop(cfg *config.Config, timeout time.Duration) (bool, error) {
	pid, err := instancelock.ReadPID(cfg.PIDPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return false, nil
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
			return false, nil
		}
		return false, fmt.Errorf("signal daemon pid %d: %w", pid, err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(cfg.SocketPath()); errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		time.Sleep(launchPollInterval)
	}
	return true, fmt.Errorf("daemon pid %d did not shut down within %s", pid, timeout)
}

package daemon

import (
	"time"

	"speakd/internal/logging"
)

const (
	// maxIdleWait caps the idle watchdog's sleep so it wakes at least every
	// ten seconds without busy-polling.
	maxIdleWait = 10 * time.Second
	// idleWakeMargin avoids waking exactly at the timeout boundary and
	// rechecking immediately.
	idleWakeMargin = 500 * time.Millisecond
	// parentPollInterval is how often managed mode compares its parent pid.
	parentPollInterval = 2 * time.Second
)

// idleWatchdog shuts the daemon down after idleTimeout of inactivity.
// Runs on its own goroutine in default mode. The sleep is interruptible by
// the shutdown signal so shutdown triggered elsewhere ends this loop
// promptly.
func (d *Daemon) idleWatchdog() {
	for {
		remaining := d.idleTimeout - d.sinceLastRequest()
		if remaining <= 0 {
			d.logger.Info("idle timeout reached",
				logging.Args(logging.Duration("idle_timeout", d.idleTimeout))...)
			d.Shutdown("idle timeout")
			return
		}
		wait := remaining + idleWakeMargin
		if wait > maxIdleWait {
			wait = maxIdleWait
		}
		timer := time.NewTimer(wait)
		select {
		case <-d.shutdownC:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// parentWatchdog shuts the daemon down when its supervising process dies.
// Normal quit paths deliver SIGTERM and are handled by the signal path; this
// is the crash-detection complement. An exiting parent reparents the daemon
// (to pid 1 or a subreaper), which the poll observes as a ppid change.
func (d *Daemon) parentWatchdog() {
	parent := d.getppid()
	if parent <= 1 {
		d.logger.Info("already orphaned at startup")
		d.Shutdown("orphaned at startup")
		return
	}
	d.logger.Info("parent watchdog started", logging.Args(logging.Int("parent_pid", parent))...)

	ticker := time.NewTicker(d.parentPoll)
	defer ticker.Stop()
	for {
		select {
		case <-d.shutdownC:
			return
		case <-ticker.C:
			if current := d.getppid(); current != parent {
				d.logger.Info("parent died",
					logging.Args(logging.Int("was", parent), logging.Int("now", current))...)
				d.Shutdown("parent died")
				return
			}
		}
	}
}

// startWatchdog launches exactly one watchdog goroutine for the mode.
func (d *Daemon) startWatchdog() {
	switch d.mode {
	case ModeManaged:
		go d.parentWatchdog()
	default:
		go d.idleWatchdog()
	}
}

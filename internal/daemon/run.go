package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"speakd/internal/history"
	"speakd/internal/instancelock"
	"speakd/internal/ipc"
	"speakd/internal/logging"
	"speakd/internal/preflight"
	"speakd/internal/synth"
)

// ErrAlreadyRunning mirrors instancelock.ErrAlreadyRunning for callers that
// only import this package. Exiting with status 0 on it is the contract:
// "already running" is a success, not a failure.
var ErrAlreadyRunning = instancelock.ErrAlreadyRunning

// Run executes the full startup sequence and serves until a shutdown trigger
// fires, at which point the process exits from inside the shutdown
// coordinator. Each startup step is a hard precondition for the next. Run
// only returns on startup failure (or ErrAlreadyRunning).
func (d *Daemon) Run(ctx context.Context, engine synth.Engine) error {
	cfg := d.cfg

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	// Single-instance gate. The lock is held until process exit; release is
	// guaranteed by fd lifetime, so no unlock appears anywhere below.
	lock, err := instancelock.Acquire(cfg.LockPath(), cfg.PIDPath())
	if err != nil {
		if errors.Is(err, instancelock.ErrAlreadyRunning) {
			return ErrAlreadyRunning
		}
		return err
	}
	d.lock = lock

	if err := os.Remove(cfg.SocketPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		d.logger.Warn("remove stale socket", logging.Args(logging.Error(err))...)
	}

	if removed := synth.PurgeStale(cfg.Paths.TempDir); removed > 0 {
		d.logger.Info("purged stale working directories", logging.Args(logging.Int("count", removed))...)
	}

	for _, result := range preflight.Run(cfg.Engine.Command, cfg.Paths.DataDir, cfg.Paths.TempDir) {
		if !result.Passed {
			d.logger.Warn("preflight",
				logging.Args(logging.String("check", result.Name), logging.String("detail", result.Detail))...)
		}
	}

	// Signals do only the minimum here: the goroutine below runs the real
	// coordinator on an ordinary goroutine, never in handler context.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signals
		d.logger.Info("received signal", logging.Args(logging.String("signal", sig.String()))...)
		d.Shutdown("signal " + sig.String())
	}()

	// Model load is the expensive step launchers are waiting out while they
	// poll for the socket. Failure here must never reach Ready.
	loadStarted := time.Now()
	if err := engine.Load(ctx); err != nil {
		return fmt.Errorf("load synthesis engine: %w", err)
	}
	d.logger.Info("engine ready", logging.Args(logging.Duration("load_time", time.Since(loadStarted)))...)

	d.gen = synth.NewGenerator(engine, cfg.Paths.TempDir, d.logger)
	d.warmup(ctx)

	hist, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		// History is informational; the daemon serves without it.
		d.logger.Warn("open history store", logging.Args(logging.Error(err))...)
	} else {
		d.mu.Lock()
		d.hist = hist
		d.mu.Unlock()
	}

	d.Touch()
	d.startWatchdog()

	server, err := ipc.NewServer(cfg.SocketPath(), d, ipc.Defaults{
		Voice:    cfg.Engine.Voice,
		Speed:    cfg.Engine.Speed,
		LangCode: cfg.Engine.LangCode,
	}, d.logger)
	if err != nil {
		return fmt.Errorf("bind socket: %w", err)
	}
	d.mu.Lock()
	d.server = server
	d.mu.Unlock()

	// A trigger that fired before the listener was published found a nil
	// server in the coordinator; finish its cleanup here instead of serving.
	select {
	case <-d.shutdownC:
		server.Close()
		if err := os.Remove(cfg.PIDPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
			d.logger.Warn("remove pid record", logging.Args(logging.Error(err))...)
		}
		d.mu.Lock()
		hist := d.hist
		d.mu.Unlock()
		if hist != nil {
			_ = hist.Close()
		}
		return nil
	default:
	}

	d.logger.Info("listening",
		logging.Args(
			logging.String("socket", cfg.SocketPath()),
			logging.String("mode", string(d.mode)),
			logging.Duration("idle_timeout", d.idleTimeout),
		)...)

	if err := server.Serve(d.shutdownC); err != nil {
		d.logger.Error("socket error in accept loop", logging.Args(logging.Error(err))...)
	}
	// Serve only returns on shutdown or a fatal listener failure; both end
	// in the same place.
	d.Shutdown("accept loop ended")
	return nil
}

// warmup pre-pays the engine's first-use initialization with a throwaway
// generation. An optimization, not a correctness requirement: failure is
// logged and startup continues.
func (d *Daemon) warmup(ctx context.Context) {
	started := time.Now()
	err := d.gen.Warmup(ctx, synth.Request{
		Text:     d.cfg.Engine.WarmupText,
		Voice:    d.cfg.Engine.Voice,
		Speed:    d.cfg.Engine.Speed,
		LangCode: d.cfg.Engine.LangCode,
	})
	if err != nil {
		d.logger.Warn("warmup failed (non-fatal)", logging.Args(logging.Error(err))...)
		return
	}
	d.logger.Info("pipeline warm", logging.Args(logging.Duration("warmup_time", time.Since(started)))...)
}

package daemon

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"speakd/internal/config"
	"speakd/internal/history"
	"speakd/internal/instancelock"
	"speakd/internal/ipc"
	"speakd/internal/logging"
	"speakd/internal/synth"
	"speakd/internal/textnorm"
)

// Mode selects which watchdog governs the daemon's lifetime.
type Mode string

const (
	// ModeDefault self-terminates after an idle timeout.
	ModeDefault Mode = "default"
	// ModeManaged binds the daemon's lifetime to its supervising process.
	ModeManaged Mode = "managed"
)

// Daemon is the process-lifecycle coordinator.
type Daemon struct {
	cfg         *config.Config
	logger      *slog.Logger
	mode        Mode
	idleTimeout time.Duration

	gen *synth.Generator
	// lock stays referenced for the life of the process; dropping it would
	// let the runtime close the fd and release the lock early.
	lock *instancelock.Handle

	// mu guards publication of server and hist: Run assigns them after
	// shutdown triggers (signals, watchdog) are already live, so Shutdown
	// may read them from another goroutine at any point.
	mu     sync.Mutex
	hist   *history.Store
	server *ipc.Server

	// start anchors the monotonic clock; lastRequest holds nanoseconds of
	// elapsed time since start, written by the accept loop and read by the
	// idle watchdog. Eventual visibility within the watchdog's polling
	// interval is all that is required, so a bare atomic suffices.
	start       time.Time
	lastRequest atomic.Int64

	shutdownOnce sync.Once
	shutdownC    chan struct{}

	// exit and getppid are swapped out in tests so shutdown and parent
	// death can be observed without killing or reparenting the test
	// process.
	exit       func(code int)
	getppid    func() int
	parentPoll time.Duration
}

// New assembles a daemon around a loaded configuration. The engine is not
// loaded and nothing is bound yet; Run drives the startup sequence.
func New(cfg *config.Config, mode Mode, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Daemon{
		cfg:         cfg,
		logger:      logging.WithComponent(logger, "daemon"),
		mode:        mode,
		idleTimeout: time.Duration(cfg.Daemon.IdleTimeoutSeconds) * time.Second,
		start:       time.Now(),
		shutdownC:   make(chan struct{}),
		exit:        os.Exit,
		getppid:     os.Getppid,
		parentPoll:  parentPollInterval,
	}
	return d, nil
}

// ShutdownSignal exposes the shutdown notification channel. It is closed
// exactly once, by whichever trigger fires first.
func (d *Daemon) ShutdownSignal() <-chan struct{} {
	return d.shutdownC
}

// Touch records request receipt for the idle watchdog. Non-decreasing by
// construction: elapsed monotonic time only grows.
func (d *Daemon) Touch() {
	d.lastRequest.Store(int64(time.Since(d.start)))
}

func (d *Daemon) sinceLastRequest() time.Duration {
	return time.Since(d.start) - time.Duration(d.lastRequest.Load())
}

// Handle serves one parsed request. Failures are contained to the request:
// whatever goes wrong, the reply is an error response and the daemon stays
// Ready.
func (d *Daemon) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	requestID := uuid.NewString()
	started := time.Now()

	sreq := synth.Request{
		Text:     textnorm.Clean(req.Text),
		Voice:    req.Voice,
		Speed:    float64(req.Speed),
		LangCode: req.LangCode,
	}

	d.logger.Info("request",
		logging.Args(
			logging.String(logging.FieldRequestID, requestID),
			logging.Int("text_chars", len(sreq.Text)),
			logging.String(logging.FieldVoice, sreq.Voice),
			logging.Float64("speed", sreq.Speed),
			logging.String(logging.FieldLangCode, sreq.LangCode),
		)...)

	audioFile, err := d.gen.Synthesize(ctx, sreq)
	d.record(ctx, requestID, started, sreq, audioFile, err)

	if err != nil {
		d.logger.Error("generation failed",
			logging.Args(logging.String(logging.FieldRequestID, requestID), logging.Error(err))...)
		return ipc.Errorf("%v", err)
	}

	d.logger.Info("response",
		logging.Args(
			logging.String(logging.FieldRequestID, requestID),
			logging.String("audio_file", audioFile),
			logging.Duration("elapsed", time.Since(started)),
		)...)
	return ipc.OK(audioFile)
}

// record appends to generation history. History is informational only;
// failures are logged and swallowed.
func (d *Daemon) record(ctx context.Context, requestID string, started time.Time, req synth.Request, audioFile string, genErr error) {
	d.mu.Lock()
	hist := d.hist
	d.mu.Unlock()
	if hist == nil {
		return
	}
	rec := history.Record{
		RequestID: requestID,
		CreatedAt: started.UTC(),
		Voice:     req.Voice,
		LangCode:  req.LangCode,
		Speed:     req.Speed,
		TextChars: len(req.Text),
		Duration:  time.Since(started),
		Status:    history.StatusOK,
		AudioFile: audioFile,
	}
	if genErr != nil {
		rec.Status = history.StatusError
		rec.Message = genErr.Error()
		rec.AudioFile = ""
	}
	if err := hist.Append(ctx, rec); err != nil {
		d.logger.Warn("record generation history", logging.Args(logging.Error(err))...)
	}
}

// Shutdown is the single idempotent teardown path, safe to invoke from any
// trigger. It closes the listener (unblocking the accept wait), removes the
// socket and identity record, and terminates the process immediately rather
// than waiting for an in-flight generation that may never finish.
func (d *Daemon) Shutdown(reason string) {
	d.shutdownOnce.Do(func() {
		close(d.shutdownC)
		d.mu.Lock()
		server, hist := d.server, d.hist
		d.mu.Unlock()
		if server != nil {
			server.Close()
		}
		if err := os.Remove(d.cfg.PIDPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
			d.logger.Warn("remove pid record", logging.Args(logging.Error(err))...)
		}
		if hist != nil {
			_ = hist.Close()
		}
		d.logger.Info("shutdown complete", logging.Args(logging.String("reason", reason))...)
		d.exit(0)
	})
}

package synth

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"speakd/internal/logging"
)

// ProcessEngine keeps the synthesis model resident in a helper child process
// and exchanges newline-delimited JSON over its stdin/stdout. Spawning the
// child is the expensive part; subsequent generations reuse it.
//
// Helper protocol, one JSON object per line:
//
//	-> {"op":"generate","text":...,"voice":...,"speed":...,"lang_code":...}
//	<- {"pcm":"<base64 s16le>","sample_rate":24000}   repeated, in order
//	<- {"done":true}                                  or {"error":"..."}
//	-> {"op":"release"}                               after each generation
//
// The child announces readiness with {"ready":true} once the model is loaded,
// which is what makes Load blocking.
type ProcessEngine struct {
	command string
	args    []string
	logger  *slog.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	enc    *json.Encoder
}

// NewProcessEngine configures an engine around the helper command. Nothing
// is spawned until Load.
func NewProcessEngine(command string, args []string, logger *slog.Logger) *ProcessEngine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ProcessEngine{
		command: command,
		args:    args,
		logger:  logging.WithComponent(logger, "engine"),
	}
}

type helperRequest struct {
	Op       string  `json:"op"`
	Text     string  `json:"text,omitempty"`
	Voice    string  `json:"voice,omitempty"`
	Speed    float64 `json:"speed,omitempty"`
	LangCode string  `json:"lang_code,omitempty"`
}

type helperRecord struct {
	Ready      bool   `json:"ready,omitempty"`
	PCM        string `json:"pcm,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Done       bool   `json:"done,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Load starts the helper and blocks until it reports the model resident.
func (e *ProcessEngine) Load(ctx context.Context) error {
	if e.cmd != nil {
		return errors.New("engine already loaded")
	}

	cmd := exec.CommandContext(ctx, e.command, e.args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("engine stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("engine stdout: %w", err)
	}
	cmd.Stderr = nil

	e.logger.Info("loading model", logging.String("command", e.command))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start engine %s: %w", e.command, err)
	}

	e.cmd = cmd
	e.stdin = stdin
	e.stdout = bufio.NewReader(stdout)
	e.enc = json.NewEncoder(stdin)

	record, err := e.readRecord()
	if err != nil {
		e.teardown()
		return fmt.Errorf("engine handshake: %w", err)
	}
	if record.Error != "" {
		e.teardown()
		return fmt.Errorf("engine load: %s", record.Error)
	}
	if !record.Ready {
		e.teardown()
		return errors.New("engine handshake: unexpected first record")
	}

	e.logger.Info("model loaded")
	return nil
}

// Generate sends one request and collects ordered chunks until the helper
// reports done. Not cancellable once started: a hung helper is resolved only
// by process termination.
func (e *ProcessEngine) Generate(_ context.Context, req Request) ([]Chunk, error) {
	if e.cmd == nil {
		return nil, errors.New("engine not loaded")
	}

	out := helperRequest{
		Op:       "generate",
		Text:     req.Text,
		Voice:    req.Voice,
		Speed:    req.Speed,
		LangCode: req.LangCode,
	}
	if err := e.enc.Encode(out); err != nil {
		return nil, fmt.Errorf("write engine request: %w", err)
	}

	var chunks []Chunk
	for {
		record, err := e.readRecord()
		if err != nil {
			return nil, fmt.Errorf("read engine response: %w", err)
		}
		switch {
		case record.Error != "":
			e.release()
			return nil, errors.New(record.Error)
		case record.Done:
			if len(chunks) == 0 {
				e.release()
				return nil, ErrNoAudio
			}
			e.release()
			return chunks, nil
		case record.PCM != "":
			pcm, err := base64.StdEncoding.DecodeString(record.PCM)
			if err != nil {
				e.drain()
				e.release()
				return nil, fmt.Errorf("decode engine chunk: %w", err)
			}
			chunks = append(chunks, Chunk{PCM: pcm, SampleRate: record.SampleRate})
		default:
			e.drain()
			e.release()
			return nil, errors.New("engine sent malformed record")
		}
	}
}

// drain consumes records until the generation's terminator so a failure
// mid-stream leaves the next request a clean stream instead of the previous
// request's leftover chunks.
func (e *ProcessEngine) drain() {
	for {
		record, err := e.readRecord()
		if err != nil {
			return
		}
		if record.Done || record.Error != "" {
			return
		}
	}
}

// release tells the helper to drop transient compute buffers so memory stays
// bounded across repeated generations. Fire and forget.
func (e *ProcessEngine) release() {
	if err := e.enc.Encode(helperRequest{Op: "release"}); err != nil {
		e.logger.Warn("engine release directive failed", logging.Args(logging.Error(err))...)
	}
}

func (e *ProcessEngine) readRecord() (helperRecord, error) {
	line, err := e.stdout.ReadString('\n')
	if err != nil {
		return helperRecord{}, err
	}
	var record helperRecord
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &record); err != nil {
		return helperRecord{}, fmt.Errorf("parse engine record: %w", err)
	}
	return record, nil
}

// Close stops the helper process. Only called on shutdown paths that do not
// already terminate the whole process.
func (e *ProcessEngine) Close() error {
	if e.cmd == nil {
		return nil
	}
	e.teardown()
	return nil
}

func (e *ProcessEngine) teardown() {
	if e.stdin != nil {
		_ = e.stdin.Close()
	}
	if e.cmd != nil && e.cmd.Process != nil {
		_ = e.cmd.Process.Kill()
		_ = e.cmd.Wait()
	}
	e.cmd = nil
	e.stdin = nil
	e.stdout = nil
	e.enc = nil
}

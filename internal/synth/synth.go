package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"speakd/internal/logging"
)

// OutputFileName is the audio file written inside each working directory.
const OutputFileName = "speakd.wav"

// Request describes one generation call.
type Request struct {
	Text     string
	Voice    string
	Speed    float64
	LangCode string
}

// Chunk is one ordered piece of generated audio: 16-bit little-endian mono
// PCM at the stated sample rate.
type Chunk struct {
	PCM        []byte
	SampleRate int
}

// Engine is the synthesis collaborator. Load blocks until the model is
// resident; failure is fatal to daemon startup. Generate blocks for the
// duration of synthesis and is not cancellable once started.
type Engine interface {
	Load(ctx context.Context) error
	Generate(ctx context.Context, req Request) ([]Chunk, error)
	Close() error
}

// ErrNoAudio reports that the engine returned without producing samples.
var ErrNoAudio = errors.New("engine produced no audio")

// Generator turns requests into WAV files on disk via an Engine.
type Generator struct {
	engine  Engine
	tempDir string
	logger  *slog.Logger
}

// NewGenerator wires an engine to the temp directory where working
// directories are created.
func NewGenerator(engine Engine, tempDir string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Generator{
		engine:  engine,
		tempDir: tempDir,
		logger:  logging.WithComponent(logger, "synth"),
	}
}

// Synthesize runs one generation and returns the path of the finished WAV
// file. Each call owns a freshly created working directory; on any failure
// the directory is removed, on success ownership of the file passes to the
// caller.
func (g *Generator) Synthesize(ctx context.Context, req Request) (string, error) {
	dir, err := NewWorkdir(g.tempDir)
	if err != nil {
		return "", fmt.Errorf("create working directory: %w", err)
	}

	outPath := filepath.Join(dir, OutputFileName)
	if err := g.generateInto(ctx, req, outPath); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			g.logger.Warn("remove failed working directory", logging.Args(logging.String("dir", dir), logging.Error(rmErr))...)
		}
		return "", err
	}
	return outPath, nil
}

func (g *Generator) generateInto(ctx context.Context, req Request, outPath string) error {
	chunks, err := g.engine.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	if err := WriteWAV(outPath, chunks); err != nil {
		return err
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return fmt.Errorf("stat audio file: %w", err)
	}
	if info.Size() == 0 {
		return errors.New("audio file empty after write")
	}
	return nil
}

// Warmup performs one throwaway generation so the first real request does
// not pay the engine's per-language initialization cost. The output is
// discarded. Errors are returned for logging but are non-fatal by contract.
func (g *Generator) Warmup(ctx context.Context, req Request) error {
	path, err := g.Synthesize(ctx, req)
	if err != nil {
		return err
	}
	return os.RemoveAll(filepath.Dir(path))
}

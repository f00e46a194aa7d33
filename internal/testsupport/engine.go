package testsupport

import (
	"context"
	"sync"

	"speakd/internal/synth"
)

// ScriptedEngine is a synth.Engine whose behavior is set per test. The zero
// value loads successfully and produces a short silent chunk per request.
type ScriptedEngine struct {
	LoadErr     error
	GenerateErr error
	Chunks      []synth.Chunk

	mu       sync.Mutex
	loaded   bool
	requests []synth.Request
}

func (e *ScriptedEngine) Load(context.Context) error {
	if e.LoadErr != nil {
		return e.LoadErr
	}
	e.mu.Lock()
	e.loaded = true
	e.mu.Unlock()
	return nil
}

func (e *ScriptedEngine) Generate(_ context.Context, req synth.Request) ([]synth.Chunk, error) {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	e.mu.Unlock()
	if e.GenerateErr != nil {
		return nil, e.GenerateErr
	}
	if e.Chunks != nil {
		return e.Chunks, nil
	}
	return []synth.Chunk{{PCM: make([]byte, 960), SampleRate: 24000}}, nil
}

func (e *ScriptedEngine) Close() error { return nil }

// Loaded reports whether Load completed.
func (e *ScriptedEngine) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// Requests returns a copy of every generate call seen, warmup included.
func (e *ScriptedEngine) Requests() []synth.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]synth.Request, len(e.requests))
	copy(out, e.requests)
	return out
}

package synth_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"speakd/internal/synth"
)

// writeHelper materializes a shell script that speaks the engine protocol.
func writeHelper(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-engine")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write helper script: %v", err)
	}
	return path
}

func TestProcessEngineGenerate(t *testing.T) {
	// "AQIDBA==" is bytes 1 2 3 4.
	helper := writeHelper(t, `
echo '{"ready":true}'
while read -r line; do
  case "$line" in
    *generate*)
      echo '{"pcm":"AQIDBA==","sample_rate":24000}'
      echo '{"pcm":"AQIDBA==","sample_rate":24000}'
      echo '{"done":true}'
      ;;
  esac
done
`)

	engine := synth.NewProcessEngine(helper, nil, nil)
	if err := engine.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	defer engine.Close()

	chunks, err := engine.Generate(context.Background(), synth.Request{Text: "hello", Voice: "bf_lily"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	for _, chunk := range chunks {
		if string(chunk.PCM) != "\x01\x02\x03\x04" {
			t.Fatalf("unexpected pcm: %v", chunk.PCM)
		}
		if chunk.SampleRate != 24000 {
			t.Fatalf("unexpected sample rate: %d", chunk.SampleRate)
		}
	}

	// The helper stays resident for subsequent generations.
	if _, err := engine.Generate(context.Background(), synth.Request{Text: "again"}); err != nil {
		t.Fatalf("second Generate returned error: %v", err)
	}
}

func TestProcessEngineGenerateError(t *testing.T) {
	helper := writeHelper(t, `
echo '{"ready":true}'
while read -r line; do
  case "$line" in
    *generate*) echo '{"error":"voice not found"}' ;;
  esac
done
`)

	engine := synth.NewProcessEngine(helper, nil, nil)
	if err := engine.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	defer engine.Close()

	_, err := engine.Generate(context.Background(), synth.Request{Text: "hello"})
	if err == nil || err.Error() != "voice not found" {
		t.Fatalf("expected helper error, got %v", err)
	}
}

func TestProcessEngineRecoversFromCorruptChunk(t *testing.T) {
	// The first generation streams a corrupt chunk followed by a valid one
	// and the terminator; the second must get its own audio, not leftovers.
	helper := writeHelper(t, `
echo '{"ready":true}'
count=0
while read -r line; do
  case "$line" in
    *generate*)
      count=$((count+1))
      if [ "$count" = 1 ]; then
        echo '{"pcm":"%%%not-base64%%%","sample_rate":24000}'
        echo '{"pcm":"AQIDBA==","sample_rate":24000}'
        echo '{"done":true}'
      else
        echo '{"pcm":"BQY=","sample_rate":24000}'
        echo '{"done":true}'
      fi
      ;;
  esac
done
`)

	engine := synth.NewProcessEngine(helper, nil, nil)
	if err := engine.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Generate(context.Background(), synth.Request{Text: "first"}); err == nil {
		t.Fatal("expected decode error")
	}

	chunks, err := engine.Generate(context.Background(), synth.Request{Text: "second"})
	if err != nil {
		t.Fatalf("second Generate returned error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	// "BQY=" is bytes 5 6; the first request's 1 2 3 4 must not leak in.
	if string(chunks[0].PCM) != "\x05\x06" {
		t.Fatalf("stale audio leaked into the next request: %v", chunks[0].PCM)
	}
}

func TestProcessEngineRecoversFromMalformedRecord(t *testing.T) {
	helper := writeHelper(t, `
echo '{"ready":true}'
count=0
while read -r line; do
  case "$line" in
    *generate*)
      count=$((count+1))
      if [ "$count" = 1 ]; then
        echo '{"sample_rate":24000}'
        echo '{"pcm":"AQIDBA==","sample_rate":24000}'
        echo '{"done":true}'
      else
        echo '{"pcm":"BQY=","sample_rate":24000}'
        echo '{"done":true}'
      fi
      ;;
  esac
done
`)

	engine := synth.NewProcessEngine(helper, nil, nil)
	if err := engine.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Generate(context.Background(), synth.Request{Text: "first"}); err == nil {
		t.Fatal("expected malformed record error")
	}

	chunks, err := engine.Generate(context.Background(), synth.Request{Text: "second"})
	if err != nil {
		t.Fatalf("second Generate returned error: %v", err)
	}
	if len(chunks) != 1 || string(chunks[0].PCM) != "\x05\x06" {
		t.Fatalf("stale records leaked into the next request: %+v", chunks)
	}
}

func TestProcessEngineLoadFailure(t *testing.T) {
	helper := writeHelper(t, `echo '{"error":"model file missing"}'`)

	engine := synth.NewProcessEngine(helper, nil, nil)
	err := engine.Load(context.Background())
	if err == nil {
		t.Fatal("expected load error")
	}
}

func TestProcessEngineEmptyGeneration(t *testing.T) {
	helper := writeHelper(t, `
echo '{"ready":true}'
while read -r line; do
  case "$line" in
    *generate*) echo '{"done":true}' ;;
  esac
done
`)

	engine := synth.NewProcessEngine(helper, nil, nil)
	if err := engine.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	defer engine.Close()

	_, err := engine.Generate(context.Background(), synth.Request{Text: "hello"})
	if !errors.Is(err, synth.ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}
}

func TestProcessEngineMissingCommand(t *testing.T) {
	engine := synth.NewProcessEngine(filepath.Join(t.TempDir(), "absent"), nil, nil)
	if err := engine.Load(context.Background()); err == nil {
		t.Fatal("expected error for missing helper binary")
	}
}

func TestProcessEngineGenerateBeforeLoad(t *testing.T) {
	engine := synth.NewProcessEngine("irrelevant", nil, nil)
	if _, err := engine.Generate(context.Background(), synth.Request{Text: "x"}); err == nil {
		t.Fatal("expected error before Load")
	}
}

package synth_test

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"speakd/internal/synth"
)

func TestWriteWAVHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	chunks := []synth.Chunk{
		{PCM: []byte{1, 2, 3, 4}, SampleRate: 24000},
		{PCM: []byte{5, 6}, SampleRate: 24000},
	}

	if err := synth.WriteWAV(path, chunks); err != nil {
		t.Fatalf("WriteWAV returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read wav: %v", err)
	}
	if len(data) != 44+6 {
		t.Fatalf("unexpected size: %d", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("bad container magic: %q %q", data[0:4], data[8:12])
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != 24000 {
		t.Fatalf("sample rate: got %d", got)
	}
	if got := binary.LittleEndian.Uint16(data[22:24]); got != 1 {
		t.Fatalf("channels: got %d", got)
	}
	if got := binary.LittleEndian.Uint16(data[34:36]); got != 16 {
		t.Fatalf("bits per sample: got %d", got)
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); got != 6 {
		t.Fatalf("data size: got %d", got)
	}
	if string(data[44:]) != "\x01\x02\x03\x04\x05\x06" {
		t.Fatalf("payload mismatch: %v", data[44:])
	}
}

func TestWriteWAVNoAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	err := synth.WriteWAV(path, nil)
	if !errors.Is(err, synth.ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}

	err = synth.WriteWAV(path, []synth.Chunk{{PCM: nil, SampleRate: 24000}})
	if !errors.Is(err, synth.ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio for empty chunks, got %v", err)
	}
}

func TestWriteWAVSampleRateMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	chunks := []synth.Chunk{
		{PCM: []byte{1, 2}, SampleRate: 24000},
		{PCM: []byte{3, 4}, SampleRate: 22050},
	}

	if err := synth.WriteWAV(path, chunks); err == nil {
		t.Fatal("expected mismatch error")
	}
}

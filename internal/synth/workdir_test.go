package synth_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"speakd/internal/synth"
)

func TestNewWorkdir(t *testing.T) {
	root := t.TempDir()

	dir, err := synth.NewWorkdir(root)
	if err != nil {
		t.Fatalf("NewWorkdir returned error: %v", err)
	}
	if filepath.Dir(dir) != root {
		t.Fatalf("workdir outside root: %q", dir)
	}
	if !strings.HasPrefix(filepath.Base(dir), synth.WorkdirPrefix) {
		t.Fatalf("missing prefix: %q", dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat workdir: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("expected a directory")
	}

	second, err := synth.NewWorkdir(root)
	if err != nil {
		t.Fatalf("second NewWorkdir returned error: %v", err)
	}
	if second == dir {
		t.Fatal("workdirs must be unique")
	}
}

func TestPurgeStale(t *testing.T) {
	root := t.TempDir()

	stale1, err := synth.NewWorkdir(root)
	if err != nil {
		t.Fatalf("NewWorkdir: %v", err)
	}
	stale2, err := synth.NewWorkdir(root)
	if err != nil {
		t.Fatalf("NewWorkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(stale1, "speakd.wav"), []byte("data"), 0o644); err != nil {
		t.Fatalf("seed stale file: %v", err)
	}

	unrelatedDir := filepath.Join(root, "keepme")
	if err := os.Mkdir(unrelatedDir, 0o755); err != nil {
		t.Fatalf("mkdir unrelated: %v", err)
	}
	unrelatedFile := filepath.Join(root, synth.WorkdirPrefix+"file-not-dir")
	if err := os.WriteFile(unrelatedFile, nil, 0o644); err != nil {
		t.Fatalf("write unrelated file: %v", err)
	}

	removed := synth.PurgeStale(root)
	if removed != 2 {
		t.Fatalf("removed %d directories, want 2", removed)
	}
	for _, gone := range []string{stale1, stale2} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Fatalf("expected %s to be removed", gone)
		}
	}
	if _, err := os.Stat(unrelatedDir); err != nil {
		t.Fatalf("unrelated directory touched: %v", err)
	}
	if _, err := os.Stat(unrelatedFile); err != nil {
		t.Fatalf("unrelated file touched: %v", err)
	}
}

func TestPurgeStaleMissingRoot(t *testing.T) {
	if removed := synth.PurgeStale(filepath.Join(t.TempDir(), "absent")); removed != 0 {
		t.Fatalf("removed %d from missing root", removed)
	}
}

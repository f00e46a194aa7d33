package instancelock_test

import (
	"os"
	"path/filepath"
	"testing"

	"speakd/internal/instancelock"
)

func TestAcquireWritesPIDRecord(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "speakd.lock")
	pidPath := filepath.Join(dir, "speakd.pid")

	handle, err := instancelock.Acquire(lockPath, pidPath)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if handle.PIDPath() != pidPath {
		t.Fatalf("unexpected pid path: %q", handle.PIDPath())
	}

	pid, err := instancelock.ReadPID(pidPath)
	if err != nil {
		t.Fatalf("ReadPID returned error: %v", err)
	}
	if pid != os.Getpid() {
		t.Fatalf("pid record mismatch: got %d want %d", pid, os.Getpid())
	}
}

func TestSecondAcquireFails(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "speakd.lock")

	if _, err := instancelock.Acquire(lockPath, filepath.Join(dir, "first.pid")); err != nil {
		t.Fatalf("first Acquire returned error: %v", err)
	}

	_, err := instancelock.Acquire(lockPath, filepath.Join(dir, "second.pid"))
	if err != instancelock.ErrAlreadyRunning {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "second.pid")); !os.IsNotExist(statErr) {
		t.Fatal("losing contender must not write a pid record")
	}
}

func TestAcquireCreatesLockDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")

	if _, err := instancelock.Acquire(filepath.Join(dir, "speakd.lock"), filepath.Join(dir, "speakd.pid")); err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
}

func TestReadPIDRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speakd.pid")
	if err := os.WriteFile(path, []byte("not-a-pid\n"), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}

	if _, err := instancelock.ReadPID(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestReadPIDMissingFile(t *testing.T) {
	_, err := instancelock.ReadPID(filepath.Join(t.TempDir(), "absent.pid"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

package preflight_test

import (
	"path/filepath"
	"testing"

	"speakd/internal/preflight"
)

func TestCheckEngineCommand(t *testing.T) {
	if res := preflight.CheckEngineCommand("sh"); !res.Passed {
		t.Fatalf("sh should resolve: %+v", res)
	}
	if res := preflight.CheckEngineCommand("definitely-not-installed-xyz"); res.Passed {
		t.Fatalf("missing command should fail: %+v", res)
	}
	if res := preflight.CheckEngineCommand("  "); res.Passed {
		t.Fatalf("blank command should fail: %+v", res)
	}
}

func TestCheckDataDirAccess(t *testing.T) {
	dir := t.TempDir()
	if res := preflight.CheckDataDirAccess(dir); !res.Passed {
		t.Fatalf("temp dir should be accessible: %+v", res)
	}
	if res := preflight.CheckDataDirAccess(filepath.Join(dir, "absent")); res.Passed {
		t.Fatalf("missing dir should fail: %+v", res)
	}
}

func TestCheckTempSpace(t *testing.T) {
	if res := preflight.CheckTempSpace(t.TempDir()); !res.Passed {
		t.Skipf("temp filesystem nearly full: %+v", res)
	}
	if res := preflight.CheckTempSpace(filepath.Join(t.TempDir(), "absent")); res.Passed {
		t.Fatalf("missing path should fail: %+v", res)
	}
}

func TestRunCoversAllChecks(t *testing.T) {
	dir := t.TempDir()
	results := preflight.Run("sh", dir, dir)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	seen := map[string]bool{}
	for _, res := range results {
		seen[res.Name] = true
	}
	for _, want := range []string{"engine command", "data directory", "temp space"} {
		if !seen[want] {
			t.Fatalf("missing check %q in %+v", want, results)
		}
	}
}

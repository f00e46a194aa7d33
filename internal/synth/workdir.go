package synth

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// WorkdirPrefix names per-generation working directories so leftovers from
// an abnormally terminated run can be recognized at the next startup.
const WorkdirPrefix = "speakd_tts_"

// NewWorkdir creates a fresh exclusive working directory under tempRoot.
func NewWorkdir(tempRoot string) (string, error) {
	if tempRoot == "" {
		tempRoot = os.TempDir()
	}
	dir := filepath.Join(tempRoot, WorkdirPrefix+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// PurgeStale removes all working directories left under tempRoot by previous
// runs. Best-effort: individual removal failures are skipped. Returns the
// number of directories removed.
func PurgeStale(tempRoot string) int {
	if tempRoot == "" {
		tempRoot = os.TempDir()
	}
	entries, err := os.ReadDir(tempRoot)
	if err != nil {
		return 0
	}
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), WorkdirPrefix) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(tempRoot, entry.Name())); err == nil {
			removed++
		}
	}
	return removed
}

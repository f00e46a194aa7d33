package logging

import (
	"log/slog"
	"os"
)

// RotateIfOversized renames the shared log file to path+".1" when it has
// grown past maxBytes, keeping a single previous generation. The log stays
// append-only between rotations so history survives daemon restarts. Call
// this before opening the logger.
func RotateIfOversized(logger *slog.Logger, path string, maxBytes int64) {
	if path == "" || maxBytes <= 0 {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() <= maxBytes {
		return
	}
	if err := os.Rename(path, path+".1"); err != nil && logger != nil {
		logger.Warn("rotate log file", Args(String("path", path), Error(err))...)
	}
}

// Package preflight runs advisory startup checks for the daemon.
//
// Failures here are logged, never fatal: the daemon still starts, but the
// operator learns early that the engine command is missing or the temp
// filesystem is nearly full, instead of discovering it on the first request.
package preflight

import (
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"
)

// Result captures the outcome of one check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minTempSpaceBytes is the free-space floor below which generations are
// likely to fail while writing audio.
const minTempSpaceBytes = 64 << 20

// CheckEngineCommand verifies the synthesis helper is resolvable on PATH.
func CheckEngineCommand(command string) Result {
	const name = "engine command"
	if strings.TrimSpace(command) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s not found in PATH", command)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDataDirAccess verifies the data directory is readable and writable.
func CheckDataDirAccess(path string) Result {
	const name = "data directory"
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckTempSpace verifies the filesystem backing generation working
// directories has room for audio output.
func CheckTempSpace(path string) Result {
	const name = "temp space"
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minTempSpaceBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s has only %d MiB free", path, free>>20)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d MiB free", free>>20)}
}

// Run evaluates all daemon preflight checks.
func Run(engineCommand, dataDir, tempDir string) []Result {
	return []Result{
		CheckEngineCommand(engineCommand),
		CheckDataDirAccess(dataDir),
		CheckTempSpace(tempDir),
	}
}

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"speakd/internal/config"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	wantData := filepath.Join(tempHome, ".local", "share", "speakd")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Daemon.IdleTimeoutSeconds != 300 {
		t.Fatalf("unexpected idle timeout: %d", cfg.Daemon.IdleTimeoutSeconds)
	}
	if cfg.Engine.Voice != "bf_lily" {
		t.Fatalf("unexpected default voice: %q", cfg.Engine.Voice)
	}
	if cfg.Engine.LangCode != "b" {
		t.Fatalf("unexpected default lang code: %q", cfg.Engine.LangCode)
	}
	if cfg.Engine.Speed != 1.0 {
		t.Fatalf("unexpected default speed: %v", cfg.Engine.Speed)
	}
	if cfg.Engine.WarmupText != "." {
		t.Fatalf("unexpected warmup text: %q", cfg.Engine.WarmupText)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + dir + `/state"

[daemon]
idle_timeout_seconds = 60

[engine]
voice = "af_bella"
speed = 1.3

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.DataDir != filepath.Join(dir, "state") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Daemon.IdleTimeoutSeconds != 60 {
		t.Fatalf("unexpected idle timeout: %d", cfg.Daemon.IdleTimeoutSeconds)
	}
	if cfg.Engine.Voice != "af_bella" {
		t.Fatalf("unexpected voice: %q", cfg.Engine.Voice)
	}
	if cfg.Engine.Speed != 1.3 {
		t.Fatalf("unexpected speed: %v", cfg.Engine.Speed)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	// Unset sections keep defaults.
	if cfg.Engine.Command != "speakd-engine" {
		t.Fatalf("unexpected engine command: %q", cfg.Engine.Command)
	}
}

func TestLoadMissingExplicitPathUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Engine.Voice != "bf_lily" {
		t.Fatalf("expected defaults, got voice %q", cfg.Engine.Voice)
	}
}

func TestIdleTimeoutEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.IdleTimeoutEnv, "45")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Daemon.IdleTimeoutSeconds != 45 {
		t.Fatalf("env override not applied: %d", cfg.Daemon.IdleTimeoutSeconds)
	}
}

func TestIdleTimeoutEnvIgnoredWhenInvalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	for _, value := range []string{"abc", "-5", "0", ""} {
		t.Setenv(config.IdleTimeoutEnv, value)
		cfg, err := config.Load("")
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Daemon.IdleTimeoutSeconds != 300 {
			t.Fatalf("value %q should be ignored, got timeout %d", value, cfg.Daemon.IdleTimeoutSeconds)
		}
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = ""
	cfg.Daemon.IdleTimeoutSeconds = 0
	cfg.Engine.Speed = -1
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{"data_dir", "idle_timeout_seconds", "speed", "logging.format"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("validation error missing %q: %v", want, err)
		}
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = "/var/lib/speakd"

	if got := cfg.SocketPath(); got != "/var/lib/speakd/tts.sock" {
		t.Fatalf("unexpected socket path: %q", got)
	}
	if got := cfg.PIDPath(); got != "/var/lib/speakd/speakd.pid" {
		t.Fatalf("unexpected pid path: %q", got)
	}
	if got := cfg.LockPath(); got != "/var/lib/speakd/speakd.lock" {
		t.Fatalf("unexpected lock path: %q", got)
	}
	if got := cfg.LogPath(); got != "/var/lib/speakd/speakd.log" {
		t.Fatalf("unexpected log path: %q", got)
	}
	if got := cfg.HistoryDBPath(); got != "/var/lib/speakd/history.db" {
		t.Fatalf("unexpected history path: %q", got)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load sample config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// IdleTimeoutEnv overrides daemon.idle_timeout_seconds when set to a positive
// integer number of seconds.
const IdleTimeoutEnv = "SPEAKD_IDLE_TIMEOUT"

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDaemon()
	c.normalizeEngine()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = os.TempDir()
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDaemon() {
	if value, ok := os.LookupEnv(IdleTimeoutEnv); ok {
		if seconds, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && seconds > 0 {
			c.Daemon.IdleTimeoutSeconds = seconds
		}
	}
	if c.Daemon.IdleTimeoutSeconds <= 0 {
		c.Daemon.IdleTimeoutSeconds = defaultIdleTimeoutSeconds
	}
}

func (c *Config) normalizeEngine() {
	c.Engine.Command = strings.TrimSpace(c.Engine.Command)
	if c.Engine.Command == "" {
		c.Engine.Command = defaultEngineCommand
	}
	if strings.TrimSpace(c.Engine.Voice) == "" {
		c.Engine.Voice = defaultVoice
	}
	if strings.TrimSpace(c.Engine.LangCode) == "" {
		c.Engine.LangCode = defaultLangCode
	}
	if c.Engine.Speed <= 0 {
		c.Engine.Speed = defaultSpeed
	}
	if c.Engine.WarmupText == "" {
		c.Engine.WarmupText = defaultWarmupText
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxMiB <= 0 {
		c.Logging.MaxMiB = defaultLogMaxMiB
	}
}

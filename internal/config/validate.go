package config

import (
	"errors"
	"fmt"
)

// Validate checks configuration invariants after normalization.
func (c *Config) Validate() error {
	var problems []error

	if c.Paths.DataDir == "" {
		problems = append(problems, errors.New("paths.data_dir must not be empty"))
	}
	if c.Daemon.IdleTimeoutSeconds <= 0 {
		problems = append(problems, fmt.Errorf("daemon.idle_timeout_seconds must be positive, got %d", c.Daemon.IdleTimeoutSeconds))
	}
	if c.Engine.Command == "" {
		problems = append(problems, errors.New("engine.command must not be empty"))
	}
	if c.Engine.Speed <= 0 {
		problems = append(problems, fmt.Errorf("engine.speed must be positive, got %v", c.Engine.Speed))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	return errors.Join(problems...)
}

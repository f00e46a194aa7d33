package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"speakd/internal/config"
	"speakd/internal/daemon"
	"speakd/internal/logging"
	"speakd/internal/synth"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	var managed bool
	var logLevel string
	var logFormat string

	cmd := &cobra.Command{
		Use:           "speakd",
		Short:         "Persistent text-to-speech daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, configPath, managed, logLevel, logFormat)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file path")
	cmd.Flags().BoolVar(&managed, "managed", false, "Exit when the parent process dies instead of on idle timeout")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	cmd.Flags().StringVar(&logFormat, "log-format", "", "Override the configured log format (console or json)")

	return cmd
}

func run(cmd *cobra.Command, configPath string, managed bool, logLevel, logFormat string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	format := cfg.Logging.Format
	if logFormat != "" {
		format = logFormat
	}

	logging.RotateIfOversized(nil, cfg.LogPath(), cfg.Logging.MaxMiB<<20)
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      format,
		OutputPaths: []string{"stdout", cfg.LogPath()},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	mode := daemon.ModeDefault
	if managed {
		mode = daemon.ModeManaged
	}

	d, err := daemon.New(cfg, mode, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	engine := synth.NewProcessEngine(cfg.Engine.Command, cfg.Engine.Args, logger)
	if err := d.Run(cmd.Context(), engine); err != nil {
		// A second invocation finding a live daemon is a success for the
		// caller: the service it wanted is already up.
		if errors.Is(err, daemon.ErrAlreadyRunning) {
			logger.Info("daemon already running, exiting")
			return nil
		}
		return err
	}
	return nil
}

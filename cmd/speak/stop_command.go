package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"speakd/internal/daemonctl"
)

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stopped, err := daemonctl.Stop(cfg, 10*time.Second)
			if err != nil {
				return fmt.Errorf("stop daemon: %w", err)
			}
			out := cmd.OutOrStdout()
			if stopped {
				fmt.Fprintln(out, "speakd stopped")
			} else {
				fmt.Fprintln(out, "speakd is not running")
			}
			return nil
		},
	}
}

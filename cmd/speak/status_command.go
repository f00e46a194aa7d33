package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"speakd/internal/instancelock"
	"speakd/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the daemon is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			socket, err := ctx.socketPath()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !ipc.Ping(socket) {
				fmt.Fprintln(out, "speakd is not running")
				return nil
			}

			rows := [][]string{
				{"Socket", socket},
			}
			if pid, err := instancelock.ReadPID(cfg.PIDPath()); err == nil {
				rows = append(rows, []string{"PID", fmt.Sprintf("%d", pid)})
			}
			rows = append(rows,
				[]string{"Data dir", cfg.Paths.DataDir},
				[]string{"Log file", cfg.LogPath()},
			)

			fmt.Fprintln(out, "speakd is running")
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil, isTTY(os.Stdout)))
			return nil
		},
	}
}

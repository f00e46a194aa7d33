package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"speakd/internal/daemonctl"
	"speakd/internal/ipc"
)

const (
	launchWait      = 15 * time.Second
	generateTimeout = 120 * time.Second
)

func newSayCommand(ctx *commandContext) *cobra.Command {
	var voice string
	var speed float64
	var langCode string
	var noLaunch bool

	cmd := &cobra.Command{
		Use:   "say <text>...",
		Short: "Synthesize text and print the resulting audio file path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return fmt.Errorf("nothing to say")
			}

			socket, err := ctx.socketPath()
			if err != nil {
				return err
			}

			if !ipc.Ping(socket) {
				if noLaunch {
					return fmt.Errorf("daemon is not running at %s", socket)
				}
				if err := launchDaemon(ctx, socket); err != nil {
					return err
				}
			}

			client := ipc.NewClient(socket)
			client.Timeout = generateTimeout
			resp, err := client.Generate(ipc.Request{
				Text:     text,
				Voice:    voice,
				Speed:    ipc.Speed(speed),
				LangCode: langCode,
			})
			if err != nil {
				return fmt.Errorf("request synthesis: %w", err)
			}
			if resp.Status != ipc.StatusOK {
				return fmt.Errorf("synthesis failed: %s", resp.Message)
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.AudioFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&voice, "voice", "", "Voice to synthesize with")
	cmd.Flags().Float64Var(&speed, "speed", 0, "Playback speed multiplier")
	cmd.Flags().StringVar(&langCode, "lang", "", "Language code")
	cmd.Flags().BoolVar(&noLaunch, "no-launch", false, "Fail instead of starting the daemon when it is not running")

	return cmd
}

func launchDaemon(ctx *commandContext, socket string) error {
	daemonPath, err := findDaemonBinary()
	if err != nil {
		return err
	}
	if err := daemonctl.Launch(daemonPath, daemonctl.LaunchOptions{
		ConfigPath: ctx.configPath(),
	}); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	if err := daemonctl.WaitForSocket(socket, launchWait); err != nil {
		return fmt.Errorf("daemon did not come up: %w", err)
	}
	return nil
}

// findDaemonBinary prefers a speakd installed next to this binary so a
// relocated install pair keeps working, then falls back to PATH.
func findDaemonBinary() (string, error) {
	if self, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(self), "speakd")
		if info, statErr := os.Stat(sibling); statErr == nil && !info.IsDir() {
			return sibling, nil
		}
	}
	path, err := exec.LookPath("speakd")
	if err != nil {
		return "", fmt.Errorf("locate speakd binary: %w", err)
	}
	return path, nil
}

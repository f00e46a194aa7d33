package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"speakd/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent synthesis requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if _, err := os.Stat(cfg.HistoryDBPath()); os.IsNotExist(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "No history yet")
				return nil
			}

			store, err := history.OpenReadOnly(cfg.HistoryDBPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history yet")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				detail := rec.AudioFile
				if rec.Status != history.StatusOK {
					detail = rec.Message
				}
				rows = append(rows, []string{
					strconv.FormatInt(rec.ID, 10),
					rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					rec.Voice,
					strconv.Itoa(rec.TextChars),
					rec.Duration.Round(10 * time.Millisecond).String(),
					string(rec.Status),
					detail,
				})
			}

			headers := []string{"ID", "When", "Voice", "Chars", "Took", "Status", "Result"}
			aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns, isTTY(os.Stdout)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")

	return cmd
}

package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/oterra/oterra/config"
	"github.com/oterra/oterra/internal/display"
	"github.com/oterra/oterra/wal"
)

var historySince time.Duration

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the journal of past runs",
	Long: `History replays the run journal: what each run observed, resolved,
planned, imported and applied, with any failures. The journal is read
straight from the work directory, no cloud credentials are needed.`,
	Example: `  oterra history                # Entries from the last 7 days
  oterra history --since 24h    # Only the last day`,
	RunE: runHistoryCmd,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().DurationVar(&historySince, "since", 7*24*time.Hour, "How far back to replay")
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	var entries []wal.Entry
	dir := filepath.Join(cfg.WorkDir, "journal")
	err = wal.Replay(dir, time.Now().Add(-historySince), func(e *wal.Entry) error {
		entries = append(entries, *e)
		return nil
	})
	if err != nil {
		return err
	}

	display.History(os.Stdout, entries)
	return nil
}

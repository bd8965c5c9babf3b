package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oterra/oterra/internal/display"
)

var scanOutput string

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Inventory the tenancy against free-tier ceilings",
	Long: `Scan every compute, networking and storage resource in the tenancy
and show usage against the free-tier ceilings. The scan is read-only
and is the sole source of truth for planning: nothing from previous
runs is consulted.`,
	Example: `  oterra scan                 # Table of usage vs limits
  oterra scan --output json   # Full catalog as JSON`,
	RunE: runScanCmd,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "table", "Output format: table, json")
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	eng, err := newEngine(ctx)
	if err != nil {
		return err
	}

	catalog, err := eng.scan(ctx)
	if err != nil {
		return err
	}

	switch scanOutput {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(catalog)
	case "table":
		display.Inventory(os.Stdout, catalog, eng.cfg.Limits)
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (must be table or json)", scanOutput)
	}
}

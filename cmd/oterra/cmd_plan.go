package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/oterra/oterra/internal/display"
	"github.com/oterra/oterra/quota"
)

var planStrategy string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what a run would import, create and skip",
	Long: `Plan resolves the desired state for the selected strategy, checks it
against the free-tier quota ledger, and diffs it against the live
catalog and terraform state. Nothing is mutated.`,
	Example: `  oterra plan                       # Plan with the configured strategy
  oterra plan --strategy maximize   # Plan the maximized configuration`,
	RunE: runPlanCmd,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVarP(&planStrategy, "strategy", "s", "", "Strategy override: reuse, load, custom, maximize")
}

func runPlanCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	eng, err := newEngine(ctx)
	if err != nil {
		return err
	}

	catalog, err := eng.scan(ctx)
	if err != nil {
		return err
	}
	display.Inventory(os.Stdout, catalog, eng.cfg.Limits)

	avail := eng.ledger.Available(catalog)
	desired, err := eng.resolve(ctx, catalog, avail, planStrategy)
	if err != nil {
		return err
	}

	if err := eng.ledger.Validate(desired, avail, catalog); err != nil {
		var qerr *quota.Error
		if errors.As(err, &qerr) {
			display.Violations(os.Stdout, qerr.Violations)
		}
		return err
	}

	actions := eng.plan(ctx, desired, catalog)
	display.Plan(os.Stdout, actions)
	return nil
}

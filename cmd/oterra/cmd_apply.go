package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/oterra/oterra/internal/display"
	"github.com/oterra/oterra/quota"
	"github.com/oterra/oterra/terraform"
	"github.com/oterra/oterra/types"
	"github.com/oterra/oterra/wal"
)

var (
	applyStrategy    string
	applyAutoApprove bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Converge the tenancy onto the desired state",
	Long: `Apply runs the full workflow: scan, resolve, validate quota, render
configuration, import everything that already exists, and create only
what is missing. Capacity exhaustion during apply is retried with
exponential backoff; import failures are reported but never abort the
run.`,
	Example: `  oterra apply                       # Converge with the configured strategy
  oterra apply --strategy maximize   # Fill all remaining free-tier headroom
  oterra apply --auto-approve        # Skip the confirmation prompt`,
	RunE: runApplyCmd,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringVarP(&applyStrategy, "strategy", "s", "", "Strategy override: reuse, load, custom, maximize")
	applyCmd.Flags().BoolVar(&applyAutoApprove, "auto-approve", false, "Apply without confirmation")
}

func runApplyCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	eng, err := newEngine(ctx)
	if err != nil {
		return err
	}

	journal, err := eng.journal()
	if err != nil {
		return err
	}
	defer journal.Close()

	catalog, err := eng.scan(ctx)
	if err != nil {
		return err
	}
	_ = journal.Append(wal.EntryObserved, "", catalog)
	display.Inventory(os.Stdout, catalog, eng.cfg.Limits)

	avail := eng.ledger.Available(catalog)
	desired, err := eng.resolve(ctx, catalog, avail, applyStrategy)
	if err != nil {
		return err
	}
	_ = journal.Append(wal.EntryResolved, "", desired)

	if err := eng.ledger.Validate(desired, avail, catalog); err != nil {
		var qerr *quota.Error
		if errors.As(err, &qerr) {
			display.Violations(os.Stdout, qerr.Violations)
		}
		_ = journal.AppendError(wal.EntryFailed, "", desired, err)
		return err
	}

	meta, err := eng.renderConfiguration(ctx, desired)
	if err != nil {
		return err
	}
	log.Info().Str("region", meta.Region).Msg("configuration rendered")

	actions := eng.plan(ctx, desired, catalog)
	_ = journal.Append(wal.EntryPlanned, "", actions)
	display.Plan(os.Stdout, actions)

	apply := applyAutoApprove || eng.cfg.AutoDeploy || eng.cfg.NonInteractive
	if !apply {
		if err := huh.NewConfirm().
			Title("Apply this plan?").
			Value(&apply).
			Run(); err != nil {
			return err
		}
		if !apply {
			fmt.Println("Plan saved, apply later with: oterra apply --auto-approve")
		}
	}

	result, err := eng.orchestrator().Execute(ctx, actions, apply)
	if result != nil {
		for _, action := range actions {
			if action.Op == types.OpImport {
				journalImport(journal, result, action)
			}
		}
	}
	if err != nil {
		_ = journal.AppendError(wal.EntryFailed, "", nil, err)
		return err
	}

	if result.PlanOutput != "" {
		fmt.Println(terraform.PlanSummary(result.PlanOutput))
	}

	if result.Applied {
		_ = journal.Append(wal.EntryApplied, "", result)
		if out, err := eng.orchestrator().Output(ctx); err == nil {
			fmt.Println(out)
		}
	}

	display.RunSummary(os.Stdout, result.AlreadyTracked, result.Imported, result.ImportFailed, result.Applied)
	return nil
}

// journalImport records one import outcome.
func journalImport(journal *wal.Journal, result *terraform.Result, action types.Action) {
	for _, failed := range result.FailedImports {
		if failed.Address == action.Address {
			_ = journal.AppendError(wal.EntryFailed, action.ResourceID,
				map[string]string{"address": action.Address}, errors.New("import failed"))
			return
		}
	}
	_ = journal.Append(wal.EntryImported, action.ResourceID,
		map[string]string{"address": action.Address})
}

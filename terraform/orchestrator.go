package terraform

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/oterra/oterra/retry"
	"github.com/oterra/oterra/types"
)

const planFile = "tfplan"

// Result summarizes one terraform workflow run.
type Result struct {
	AlreadyTracked int
	Imported       int
	ImportFailed   int
	FailedImports  []types.Action
	PlanOutput     string
	Applied        bool
}

// Orchestrator sequences the terraform workflow: init, import, validate,
// plan, apply. Each phase has its own failure policy.
type Orchestrator struct {
	runner Runner
	dir    string
	exec   *retry.Executor
}

// NewOrchestrator builds an orchestrator over the given runner. dir is
// the working directory holding the rendered configuration and plan
// file.
func NewOrchestrator(runner Runner, dir string, policy retry.Policy) *Orchestrator {
	return &Orchestrator{
		runner: runner,
		dir:    dir,
		exec:   retry.NewExecutor(policy, retry.Network()),
	}
}

// Execute runs the workflow for the planned actions. Import failures are
// recorded and counted but never abort the batch: every importable
// resource gets its attempt, and whatever could not be imported simply
// stays outside state for this run. Validate and plan failures are
// fatal. Apply retries capacity exhaustion only.
func (o *Orchestrator) Execute(ctx context.Context, actions []types.Action, apply bool) (*Result, error) {
	if err := o.Init(ctx); err != nil {
		return nil, err
	}

	result := o.Import(ctx, actions)

	if err := o.Validate(ctx); err != nil {
		return result, err
	}

	planOut, err := o.Plan(ctx)
	if err != nil {
		return result, err
	}
	result.PlanOutput = planOut

	if apply {
		if err := o.Apply(ctx); err != nil {
			return result, err
		}
		result.Applied = true
	}
	return result, nil
}

// Init initializes the working directory, retrying transient transport
// failures. Init is idempotent, re-running it is always safe.
func (o *Orchestrator) Init(ctx context.Context) error {
	return o.exec.Do(ctx, func(ctx context.Context) error {
		_, err := o.runner.Run(ctx, "init", "-input=false", "-upgrade")
		return err
	})
}

// Import binds every planned import to its address. Addresses already in
// state are skipped; the state check is what makes re-runs converge to
// all-skip.
func (o *Orchestrator) Import(ctx context.Context, actions []types.Action) *Result {
	result := &Result{}
	importExec := o.exec.WithClassifier(retry.Any())

	for _, action := range actions {
		if action.Op != types.OpImport {
			continue
		}

		if o.stateContains(ctx, action.Address) {
			log.Debug().Str("address", action.Address).Msg("already in state")
			result.AlreadyTracked++
			continue
		}

		err := importExec.Do(ctx, func(ctx context.Context) error {
			_, err := o.runner.Run(ctx, "import", action.Address, action.ResourceID)
			return err
		})
		if err != nil {
			log.Warn().
				Err(err).
				Str("address", action.Address).
				Str("resource", action.ResourceID).
				Msg("import failed, resource stays unmanaged this run")
			result.ImportFailed++
			result.FailedImports = append(result.FailedImports, action)
			continue
		}

		log.Info().Str("address", action.Address).Msg("imported")
		result.Imported++
	}
	return result
}

// Validate checks the rendered configuration. A validation failure means
// the renderer produced something broken, nothing downstream can fix it.
func (o *Orchestrator) Validate(ctx context.Context) error {
	_, err := o.runner.Run(ctx, "validate")
	return err
}

// Plan writes the execution plan to the plan file and returns the
// human-readable output.
func (o *Orchestrator) Plan(ctx context.Context) (string, error) {
	return o.runner.Run(ctx, "plan", "-out="+planFile, "-input=false")
}

// Apply applies the saved plan. Only capacity exhaustion is retried:
// any other failure mid-apply could repeat a mutation and must surface
// immediately.
func (o *Orchestrator) Apply(ctx context.Context) error {
	err := o.exec.WithClassifier(retry.Capacity()).Do(ctx, func(ctx context.Context) error {
		_, err := o.runner.Run(ctx, "apply", "-input=false", planFile)
		return err
	})
	if err != nil {
		return err
	}

	if rmErr := os.Remove(filepath.Join(o.dir, planFile)); rmErr != nil && !os.IsNotExist(rmErr) {
		log.Debug().Err(rmErr).Msg("could not remove plan file")
	}
	return nil
}

// Output returns the terraform outputs as JSON.
func (o *Orchestrator) Output(ctx context.Context) (string, error) {
	return o.runner.Run(ctx, "output", "-json")
}

// Tracked reads which of the given addresses are already in state.
func (o *Orchestrator) Tracked(ctx context.Context, addresses []string) types.Tracked {
	tracked := types.Tracked{}
	for _, addr := range addresses {
		if o.stateContains(ctx, addr) {
			tracked[addr] = addr
		}
	}
	return tracked
}

func (o *Orchestrator) stateContains(ctx context.Context, address string) bool {
	_, err := o.runner.Run(ctx, "state", "show", address)
	return err == nil
}

// PlanSummary extracts the human-relevant lines from plan output.
func PlanSummary(planOutput string) string {
	var lines []string
	for _, line := range strings.Split(planOutput, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "Plan:") ||
			strings.Contains(trimmed, "will be created") ||
			strings.Contains(trimmed, "No changes") ||
			strings.HasPrefix(trimmed, "#") {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return planOutput
	}
	return strings.Join(lines, "\n")
}

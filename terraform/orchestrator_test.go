package terraform

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oterra/oterra/retry"
	"github.com/oterra/oterra/types"
)

// fakeRunner dispatches terraform invocations to a scripted handler and
// records every call.
type fakeRunner struct {
	calls   [][]string
	handler func(args []string) (string, error)
}

func (f *fakeRunner) Run(_ context.Context, args ...string) (string, error) {
	f.calls = append(f.calls, args)
	if f.handler == nil {
		return "", nil
	}
	return f.handler(args)
}

func (f *fakeRunner) count(command string) int {
	n := 0
	for _, call := range f.calls {
		if call[0] == command {
			n++
		}
	}
	return n
}

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

func TestExecuteFullWorkflow(t *testing.T) {
	runner := &fakeRunner{handler: func(args []string) (string, error) {
		if args[0] == "state" {
			return "", errors.New("not found in state")
		}
		if args[0] == "plan" {
			return "Plan: 2 to add, 0 to change, 0 to destroy.", nil
		}
		return "", nil
	}}

	o := NewOrchestrator(runner, t.TempDir(), fastPolicy())
	actions := []types.Action{
		{Op: types.OpImport, Address: "oci_core_vcn.main", Kind: types.KindVcn, ResourceID: "ocid1.vcn.a"},
		{Op: types.OpCreate, Address: "oci_core_instance.arm[0]", Kind: types.KindInstance},
	}

	result, err := o.Execute(context.Background(), actions, true)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Zero(t, result.ImportFailed)
	assert.True(t, result.Applied)
	assert.Contains(t, result.PlanOutput, "Plan: 2 to add")

	assert.Equal(t, 1, runner.count("init"))
	assert.Equal(t, 1, runner.count("import"))
	assert.Equal(t, 1, runner.count("validate"))
	assert.Equal(t, 1, runner.count("plan"))
	assert.Equal(t, 1, runner.count("apply"))
}

func TestImportSkipsAddressesAlreadyInState(t *testing.T) {
	runner := &fakeRunner{handler: func(args []string) (string, error) {
		// Every state show succeeds: everything is already tracked.
		return "", nil
	}}

	o := NewOrchestrator(runner, t.TempDir(), fastPolicy())
	result := o.Import(context.Background(), []types.Action{
		{Op: types.OpImport, Address: "oci_core_vcn.main", ResourceID: "ocid1.vcn.a"},
		{Op: types.OpImport, Address: "oci_core_instance.amd[0]", ResourceID: "ocid1.instance.a"},
	})

	assert.Equal(t, 2, result.AlreadyTracked)
	assert.Zero(t, result.Imported)
	assert.Zero(t, runner.count("import"))
}

func TestImportFailuresAreCountedNotFatal(t *testing.T) {
	runner := &fakeRunner{handler: func(args []string) (string, error) {
		switch args[0] {
		case "state":
			return "", errors.New("not found")
		case "import":
			if args[1] == "oci_core_instance.amd[0]" {
				return "", errors.New("authorization failed")
			}
			return "", nil
		}
		return "", nil
	}}

	o := NewOrchestrator(runner, t.TempDir(), fastPolicy())
	result := o.Import(context.Background(), []types.Action{
		{Op: types.OpImport, Address: "oci_core_instance.amd[0]", ResourceID: "ocid1.instance.a"},
		{Op: types.OpImport, Address: "oci_core_instance.arm[0]", ResourceID: "ocid1.instance.b"},
		{Op: types.OpImport, Address: "oci_core_vcn.main", ResourceID: "ocid1.vcn.a"},
	})

	// One failure, the rest of the batch still ran.
	assert.Equal(t, 1, result.ImportFailed)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.FailedImports, 1)
	assert.Equal(t, "oci_core_instance.amd[0]", result.FailedImports[0].Address)
}

func TestInitRetriesTransientFailures(t *testing.T) {
	attempts := 0
	runner := &fakeRunner{handler: func(args []string) (string, error) {
		if args[0] == "init" {
			attempts++
			if attempts < 3 {
				return "", errors.New("connection reset by peer")
			}
		}
		return "", nil
	}}

	o := NewOrchestrator(runner, t.TempDir(), fastPolicy())
	require.NoError(t, o.Init(context.Background()))
	assert.Equal(t, 3, attempts)
}

func TestApplyRetriesCapacityOnly(t *testing.T) {
	attempts := 0
	runner := &fakeRunner{handler: func(args []string) (string, error) {
		if args[0] == "apply" {
			attempts++
			if attempts == 1 {
				return "", errors.New("500-InternalError, Out of host capacity")
			}
		}
		return "", nil
	}}

	o := NewOrchestrator(runner, t.TempDir(), fastPolicy())
	require.NoError(t, o.Apply(context.Background()))
	assert.Equal(t, 2, attempts)
}

func TestApplyDoesNotRetryOtherFailures(t *testing.T) {
	attempts := 0
	runner := &fakeRunner{handler: func(args []string) (string, error) {
		if args[0] == "apply" {
			attempts++
			return "", errors.New("409-Conflict, resource already exists")
		}
		return "", nil
	}}

	o := NewOrchestrator(runner, t.TempDir(), fastPolicy())
	err := o.Apply(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestValidateFailureIsFatal(t *testing.T) {
	runner := &fakeRunner{handler: func(args []string) (string, error) {
		switch args[0] {
		case "validate":
			return "", errors.New("Invalid reference on main.tf line 4")
		case "state":
			return "", errors.New("not found")
		}
		return "", nil
	}}

	o := NewOrchestrator(runner, t.TempDir(), fastPolicy())
	_, err := o.Execute(context.Background(), nil, false)
	require.Error(t, err)
	assert.Zero(t, runner.count("plan"))
	assert.Zero(t, runner.count("apply"))
}

func TestTrackedReadsState(t *testing.T) {
	runner := &fakeRunner{handler: func(args []string) (string, error) {
		if args[0] == "state" && args[2] == "oci_core_vcn.main" {
			return "resource shown", nil
		}
		return "", errors.New("not found")
	}}

	o := NewOrchestrator(runner, t.TempDir(), fastPolicy())
	tracked := o.Tracked(context.Background(), []string{"oci_core_vcn.main", "oci_core_subnet.main"})

	assert.True(t, tracked.Contains("oci_core_vcn.main"))
	assert.False(t, tracked.Contains("oci_core_subnet.main"))
}

func TestPlanSummaryExtractsRelevantLines(t *testing.T) {
	raw := strings.Join([]string{
		"Refreshing state...",
		"  # oci_core_instance.arm[0] will be created",
		"      + shape = \"VM.Standard.A1.Flex\"",
		"Plan: 1 to add, 0 to change, 0 to destroy.",
	}, "\n")

	summary := PlanSummary(raw)
	assert.Contains(t, summary, "will be created")
	assert.Contains(t, summary, "Plan: 1 to add")
	assert.NotContains(t, summary, "Refreshing state")
}

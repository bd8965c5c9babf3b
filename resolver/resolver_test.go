package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oterra/oterra/quota"
	"github.com/oterra/oterra/types"
)

func fullAvailability() quota.Availability {
	return quota.Availability{
		quota.AmdInstances: 2,
		quota.ArmInstances: 4,
		quota.ArmOCPUs:     4,
		quota.ArmMemoryGB:  24,
		quota.StorageGB:    200,
		quota.Vcns:         2,
	}
}

func TestParseStrategy(t *testing.T) {
	for _, valid := range []string{"reuse", "load", "custom", "maximize"} {
		s, err := ParseStrategy(valid)
		require.NoError(t, err)
		assert.Equal(t, Strategy(valid), s)
	}

	_, err := ParseStrategy("yolo")
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestReuseMirrorsCatalog(t *testing.T) {
	catalog := &types.Catalog{}
	catalog.Add(types.Resource{
		Kind: types.KindInstance, Family: types.FamilyAmd,
		Name: "web-1", Shape: types.ShapeAmdMicro,
	})
	catalog.Add(types.Resource{
		Kind: types.KindInstance, Family: types.FamilyArm,
		Name: "build-1", Shape: types.ShapeArmFlex, OCPUs: 2, MemoryGB: 12,
	})

	r := New(quota.DefaultLimits(), Options{Strategy: StrategyReuse})
	desired, err := r.Resolve(catalog, fullAvailability())
	require.NoError(t, err)

	require.Len(t, desired.Amd, 1)
	assert.Equal(t, "web-1", desired.Amd[0].Hostname)
	require.Len(t, desired.Arm, 1)
	assert.Equal(t, "build-1", desired.Arm[0].Hostname)
	assert.Equal(t, 2, desired.Arm[0].OCPUs)
	assert.Equal(t, 12, desired.Arm[0].MemoryGB)
}

func TestReuseEmptyCatalogDefault(t *testing.T) {
	r := New(quota.DefaultLimits(), Options{Strategy: StrategyReuse})
	desired, err := r.Resolve(&types.Catalog{}, fullAvailability())
	require.NoError(t, err)

	assert.Empty(t, desired.Amd)
	require.Len(t, desired.Arm, 1)
	assert.Equal(t, DefaultArmHostname, desired.Arm[0].Hostname)
	assert.Equal(t, 4, desired.Arm[0].OCPUs)
	assert.Equal(t, 24, desired.Arm[0].MemoryGB)
	assert.Equal(t, 200, desired.Arm[0].BootVolumeGB)
	assert.Equal(t, 1, desired.Vcn.Count)
}

func TestMaximizeFillsRemainingArmCapacity(t *testing.T) {
	// Scenario: one live Arm instance at 2 OCPUs / 8 GB against 4 / 24.
	catalog := &types.Catalog{}
	catalog.Add(types.Resource{
		Kind: types.KindInstance, Family: types.FamilyArm,
		Name: "existing", OCPUs: 2, MemoryGB: 8,
	})
	avail := quota.Availability{
		quota.AmdInstances: 2,
		quota.ArmInstances: 3,
		quota.ArmOCPUs:     2,
		quota.ArmMemoryGB:  16,
		quota.StorageGB:    150,
		quota.Vcns:         2,
	}

	r := New(quota.DefaultLimits(), Options{Strategy: StrategyMaximize, HasArmImage: true})
	desired, err := r.Resolve(catalog, avail)
	require.NoError(t, err)

	// The existing instance is mirrored; exactly one more is added, and
	// it consumes all remaining OCPUs and memory.
	require.Len(t, desired.Arm, 2)
	added := desired.Arm[1]
	assert.Equal(t, 2, added.OCPUs)
	assert.Equal(t, 16, added.MemoryGB)
}

func TestMaximizeAmdUsesFullAvailability(t *testing.T) {
	r := New(quota.DefaultLimits(), Options{Strategy: StrategyMaximize, HasArmImage: true})
	desired, err := r.Resolve(&types.Catalog{}, fullAvailability())
	require.NoError(t, err)

	assert.Len(t, desired.Amd, 2)
	require.Len(t, desired.Arm, 1)
	assert.Equal(t, 4, desired.Arm[0].OCPUs)
	assert.Equal(t, 24, desired.Arm[0].MemoryGB)
	// 200 GB minus two 50 GB Amd boot volumes.
	assert.Equal(t, 100, desired.Arm[0].BootVolumeGB)
}

func TestMaximizeBootVolumeFlooredAtProviderMinimum(t *testing.T) {
	// Almost no storage left: the Arm boot volume still requests the
	// provider minimum rather than an unusable sub-minimum size.
	avail := quota.Availability{
		quota.AmdInstances: 2,
		quota.ArmInstances: 4,
		quota.ArmOCPUs:     4,
		quota.ArmMemoryGB:  24,
		quota.StorageGB:    120,
		quota.Vcns:         2,
	}

	r := New(quota.DefaultLimits(), Options{Strategy: StrategyMaximize, HasArmImage: true})
	desired, err := r.Resolve(&types.Catalog{}, avail)
	require.NoError(t, err)

	require.Len(t, desired.Arm, 1)
	// 120 - 2*50 = 20, below the 47 GB minimum.
	assert.Equal(t, 47, desired.Arm[0].BootVolumeGB)
}

func TestMaximizeWithoutArmImage(t *testing.T) {
	r := New(quota.DefaultLimits(), Options{Strategy: StrategyMaximize, HasArmImage: false})
	desired, err := r.Resolve(&types.Catalog{}, fullAvailability())
	require.NoError(t, err)
	assert.Empty(t, desired.Arm)
	assert.Len(t, desired.Amd, 2)
}

func TestCustomNonInteractiveDefaults(t *testing.T) {
	r := New(quota.DefaultLimits(), Options{
		Strategy:       StrategyCustom,
		NonInteractive: true,
		HasArmImage:    true,
	})
	desired, err := r.Resolve(&types.Catalog{}, fullAvailability())
	require.NoError(t, err)

	assert.Empty(t, desired.Amd)
	require.Len(t, desired.Arm, 1)
	assert.Equal(t, 4, desired.Arm[0].OCPUs)
	assert.Equal(t, 24, desired.Arm[0].MemoryGB)
	assert.Equal(t, DefaultAmdBootGB, desired.Arm[0].BootVolumeGB)
}

// scriptedPrompter replays canned answers in order.
type scriptedPrompter struct {
	ints    []int
	strings []string
}

func (p *scriptedPrompter) Int(_, _ string, def, min, max int) (int, error) {
	if len(p.ints) == 0 {
		return def, nil
	}
	n := p.ints[0]
	p.ints = p.ints[1:]
	if n < min {
		n = min
	}
	if n > max {
		n = max
	}
	return n, nil
}

func (p *scriptedPrompter) String(_, def string) (string, error) {
	if len(p.strings) == 0 {
		return def, nil
	}
	s := p.strings[0]
	p.strings = p.strings[1:]
	return s, nil
}

func TestCustomPoolDecrementsAcrossInstances(t *testing.T) {
	// Two Arm instances: the first takes 3 OCPUs / 18 GB, so the second
	// can only be offered what is left (1 OCPU / 6 GB).
	script := &scriptedPrompter{
		ints: []int{
			0,  // amd count
			2,  // arm count
			3,  // arm-1 ocpus
			18, // arm-1 memory
			50, // arm-1 boot
			4,  // arm-2 ocpus: clamped to remaining 1
			24, // arm-2 memory: clamped to remaining 6
			50, // arm-2 boot
		},
	}

	r := New(quota.DefaultLimits(), Options{Strategy: StrategyCustom, HasArmImage: true}).
		withPrompter(script)
	desired, err := r.Resolve(&types.Catalog{}, fullAvailability())
	require.NoError(t, err)

	require.Len(t, desired.Arm, 2)
	assert.Equal(t, 3, desired.Arm[0].OCPUs)
	assert.Equal(t, 18, desired.Arm[0].MemoryGB)
	assert.Equal(t, 1, desired.Arm[1].OCPUs)
	assert.Equal(t, 6, desired.Arm[1].MemoryGB)

	// The batch as a whole cannot over-allocate the pool.
	assert.LessOrEqual(t, desired.ArmOCPUs(), 4)
	assert.LessOrEqual(t, desired.ArmMemoryGB(), 24)
}

func TestLoadSavedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "variables.tf")
	content := `locals {
  amd_micro_instance_count      = 1
  amd_micro_boot_volume_size_gb = 50
  amd_micro_hostnames           = ["web-1"]

  arm_flex_instance_count       = 2
  arm_flex_ocpus_per_instance   = [3, 1]
  arm_flex_memory_per_instance  = [18, 6]
  arm_flex_boot_volume_size_gb  = [100, 50]
  arm_flex_hostnames            = ["build-1", "build-2"]
  arm_block_volume_sizes        = [0, 50]
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r := New(quota.DefaultLimits(), Options{Strategy: StrategyLoad, SavedPath: path})
	desired, err := r.Resolve(&types.Catalog{}, fullAvailability())
	require.NoError(t, err)

	require.Len(t, desired.Amd, 1)
	assert.Equal(t, "web-1", desired.Amd[0].Hostname)
	require.Len(t, desired.Arm, 2)
	assert.Equal(t, 3, desired.Arm[0].OCPUs)
	assert.Equal(t, 100, desired.Arm[0].BootVolumeGB)
	assert.Equal(t, "build-2", desired.Arm[1].Hostname)
	assert.Equal(t, 50, desired.Arm[1].BlockVolumeGB)
}

func TestLoadSavedMissingFile(t *testing.T) {
	r := New(quota.DefaultLimits(), Options{
		Strategy:  StrategyLoad,
		SavedPath: filepath.Join(t.TempDir(), "absent.tf"),
	})
	_, err := r.Resolve(&types.Catalog{}, fullAvailability())

	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestLoadSavedMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "variables.tf")
	// Declares two arm instances but provides one ocpu entry.
	content := `locals {
  amd_micro_instance_count     = 0
  arm_flex_instance_count      = 2
  arm_flex_ocpus_per_instance  = [4]
  arm_flex_memory_per_instance = [24]
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r := New(quota.DefaultLimits(), Options{Strategy: StrategyLoad, SavedPath: path})
	_, err := r.Resolve(&types.Catalog{}, fullAvailability())

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Reason, "malformed")
}

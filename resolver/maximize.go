package resolver

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/oterra/oterra/quota"
	"github.com/oterra/oterra/types"
)

// resolveMaximize mirrors what exists and then fills every remaining
// ceiling: all available Amd slots, plus one Arm instance consuming all
// remaining OCPUs and memory.
func (r *Resolver) resolveMaximize(catalog *types.Catalog, avail quota.Availability) *types.DesiredState {
	desired := &types.DesiredState{
		Vcn: defaultVcn(),
		Amd: mirrorInstances(catalog.AmdInstances, DefaultAmdBootGB),
		Arm: mirrorInstances(catalog.ArmInstances, DefaultAmdBootGB),
	}

	newAmd := avail[quota.AmdInstances]
	for i := 0; i < newAmd; i++ {
		desired.Amd = append(desired.Amd, types.InstanceSpec{
			Hostname:     fmt.Sprintf("amd-instance-%d", len(desired.Amd)+1),
			BootVolumeGB: DefaultAmdBootGB,
		})
	}

	armOCPUs := avail[quota.ArmOCPUs]
	armMemory := avail[quota.ArmMemoryGB]
	if r.opts.HasArmImage && armOCPUs > 0 && avail[quota.ArmInstances] > 0 {
		// Whatever storage is left after the new Amd boot volumes goes to
		// the Arm boot volume. Never request below the provider minimum,
		// even when that nominally over-asks the storage ledger: a
		// sub-minimum volume is rejected outright, a slight over-ask is
		// merely caught by validation.
		bootGB := avail[quota.StorageGB] - newAmd*DefaultAmdBootGB
		if bootGB < r.limits.MinBootVolumeGB {
			bootGB = r.limits.MinBootVolumeGB
		}

		desired.Arm = append(desired.Arm, types.InstanceSpec{
			Hostname:     fmt.Sprintf("arm-instance-%d", len(desired.Arm)+1),
			OCPUs:        armOCPUs,
			MemoryGB:     armMemory,
			BootVolumeGB: bootGB,
		})
	}

	log.Info().
		Int("amd", desired.AmdCount()).
		Int("arm", desired.ArmCount()).
		Int("new_arm_ocpus", armOCPUs).
		Int("new_arm_memory_gb", armMemory).
		Msg("maximized free tier configuration")
	return desired
}

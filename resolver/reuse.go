package resolver

import (
	"github.com/rs/zerolog/log"

	"github.com/oterra/oterra/types"
)

// resolveReuse mirrors the catalog's current instances. An empty tenancy
// falls back to the documented default: no Amd instances and a single Arm
// instance at 4 OCPUs / 24 GB / 200 GB boot.
func (r *Resolver) resolveReuse(catalog *types.Catalog) *types.DesiredState {
	desired := &types.DesiredState{
		Vcn: defaultVcn(),
		Amd: mirrorInstances(catalog.AmdInstances, DefaultAmdBootGB),
		Arm: mirrorInstances(catalog.ArmInstances, DefaultAmdBootGB),
	}

	if len(desired.Amd) == 0 && len(desired.Arm) == 0 {
		log.Info().Msg("no existing instances, using default configuration")
		desired.Arm = []types.InstanceSpec{{
			Hostname:     DefaultArmHostname,
			OCPUs:        defaultArmOCPUs,
			MemoryGB:     defaultArmMemoryGB,
			BootVolumeGB: defaultArmBootGB,
		}}
	}

	log.Info().
		Int("amd", desired.AmdCount()).
		Int("arm", desired.ArmCount()).
		Msg("desired state mirrors existing instances")
	return desired
}

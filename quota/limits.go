// Package quota tracks free-tier capacity against fixed per-kind ceilings.
package quota

// Metric names one quota-limited dimension.
type Metric string

const (
	AmdInstances Metric = "amd_instances"
	ArmInstances Metric = "arm_instances"
	ArmOCPUs     Metric = "arm_ocpus"
	ArmMemoryGB  Metric = "arm_memory_gb"
	StorageGB    Metric = "storage_gb"
	Vcns         Metric = "vcns"
)

// Limits holds the fixed free-tier ceilings. Limits are never mutated at
// runtime; a new value set means a new Ledger.
type Limits struct {
	MaxAmdInstances int `yaml:"max_amd_instances"`
	MaxArmInstances int `yaml:"max_arm_instances"`
	MaxArmOCPUs     int `yaml:"max_arm_ocpus"`
	MaxArmMemoryGB  int `yaml:"max_arm_memory_gb"`
	MaxStorageGB    int `yaml:"max_storage_gb"`
	MaxVcns         int `yaml:"max_vcns"`

	// MinBootVolumeGB is the provider's floor for a boot volume, not a
	// ceiling. Requests below it are rejected by the provider outright.
	MinBootVolumeGB int `yaml:"min_boot_volume_gb"`
}

// DefaultLimits returns the Oracle Cloud always-free ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxAmdInstances: 2,
		MaxArmInstances: 4,
		MaxArmOCPUs:     4,
		MaxArmMemoryGB:  24,
		MaxStorageGB:    200,
		MaxVcns:         2,
		MinBootVolumeGB: 47,
	}
}

// Ceiling returns the limit for one metric.
func (l Limits) Ceiling(m Metric) int {
	switch m {
	case AmdInstances:
		return l.MaxAmdInstances
	case ArmInstances:
		return l.MaxArmInstances
	case ArmOCPUs:
		return l.MaxArmOCPUs
	case ArmMemoryGB:
		return l.MaxArmMemoryGB
	case StorageGB:
		return l.MaxStorageGB
	case Vcns:
		return l.MaxVcns
	default:
		return 0
	}
}

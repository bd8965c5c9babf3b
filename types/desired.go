package types

// InstanceSpec describes one desired instance slot. Slot order is
// significant: the Nth spec of a family corresponds to the Nth live
// instance of that family during planning.
type InstanceSpec struct {
	Hostname      string `json:"hostname"`
	OCPUs         int    `json:"ocpus"`
	MemoryGB      int    `json:"memory_gb"`
	BootVolumeGB  int    `json:"boot_volume_gb"`
	BlockVolumeGB int    `json:"block_volume_gb"`
}

// VcnSpec holds the network-level settings of the desired state.
type VcnSpec struct {
	Count    int    `json:"count"`
	CIDR     string `json:"cidr"`
	DNSLabel string `json:"dns_label"`
}

// DesiredState is the target configuration produced by a resolver
// strategy. Every numeric field must pass quota validation before the
// state is acted on.
type DesiredState struct {
	Vcn VcnSpec        `json:"vcn"`
	Amd []InstanceSpec `json:"amd"`
	Arm []InstanceSpec `json:"arm"`
}

// AmdCount returns the number of desired Amd instances.
func (d *DesiredState) AmdCount() int { return len(d.Amd) }

// ArmCount returns the number of desired Arm instances.
func (d *DesiredState) ArmCount() int { return len(d.Arm) }

// ArmOCPUs sums the OCPUs requested across all Arm slots.
func (d *DesiredState) ArmOCPUs() int {
	total := 0
	for _, s := range d.Arm {
		total += s.OCPUs
	}
	return total
}

// ArmMemoryGB sums the memory requested across all Arm slots.
func (d *DesiredState) ArmMemoryGB() int {
	total := 0
	for _, s := range d.Arm {
		total += s.MemoryGB
	}
	return total
}

// StorageGB sums boot and block volume gigabytes across both families.
func (d *DesiredState) StorageGB() int {
	total := 0
	for _, s := range d.Amd {
		total += s.BootVolumeGB + s.BlockVolumeGB
	}
	for _, s := range d.Arm {
		total += s.BootVolumeGB + s.BlockVolumeGB
	}
	return total
}

// Specs returns the slots of one family.
func (d *DesiredState) Specs(f Family) []InstanceSpec {
	if f == FamilyAmd {
		return d.Amd
	}
	return d.Arm
}

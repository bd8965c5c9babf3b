package resolver

import (
	"fmt"

	"github.com/oterra/oterra/quota"
	"github.com/oterra/oterra/types"
)

// resolveCustom constructs counts and per-instance attributes from
// prompts. Every numeric bound is clamped to what is available at the
// time of entry, and Arm OCPU/memory allocations draw down a running
// pool so later instances cannot claim what earlier ones already took.
//
// Non-interactive runs take every default: no Amd instances and one Arm
// instance consuming the full remaining pool.
func (r *Resolver) resolveCustom(catalog *types.Catalog, avail quota.Availability) (*types.DesiredState, error) {
	desired := &types.DesiredState{Vcn: defaultVcn()}

	if err := r.customAmd(desired, avail); err != nil {
		return nil, err
	}
	if err := r.customArm(desired, avail); err != nil {
		return nil, err
	}
	return desired, nil
}

func (r *Resolver) customAmd(desired *types.DesiredState, avail quota.Availability) error {
	availAmd := avail[quota.AmdInstances]
	if availAmd == 0 {
		return nil
	}

	count := 0
	if !r.opts.NonInteractive {
		var err error
		count, err = r.prompt.Int(
			fmt.Sprintf("Number of AMD instances (0-%d)", availAmd),
			"VM.Standard.E2.1.Micro, 1 OCPU / 1 GB each", 0, 0, availAmd)
		if err != nil {
			return &ConfigError{Reason: fmt.Sprintf("amd count prompt: %v", err)}
		}
	}

	for i := 1; i <= count; i++ {
		hostname := fmt.Sprintf("amd-instance-%d", i)
		if !r.opts.NonInteractive {
			var err error
			hostname, err = r.prompt.String(fmt.Sprintf("Hostname for AMD instance %d", i), hostname)
			if err != nil {
				return &ConfigError{Reason: fmt.Sprintf("amd hostname prompt: %v", err)}
			}
		}
		desired.Amd = append(desired.Amd, types.InstanceSpec{
			Hostname:     hostname,
			BootVolumeGB: DefaultAmdBootGB,
		})
	}
	return nil
}

func (r *Resolver) customArm(desired *types.DesiredState, avail quota.Availability) error {
	remainingOCPUs := avail[quota.ArmOCPUs]
	remainingMemory := avail[quota.ArmMemoryGB]
	if !r.opts.HasArmImage || remainingOCPUs == 0 {
		return nil
	}

	maxCount := avail[quota.ArmInstances]
	if maxCount > remainingOCPUs {
		// Each instance needs at least one OCPU.
		maxCount = remainingOCPUs
	}

	count := 1
	if !r.opts.NonInteractive {
		var err error
		count, err = r.prompt.Int(
			fmt.Sprintf("Number of ARM instances (0-%d)", maxCount),
			"VM.Standard.A1.Flex, flexible OCPU and memory", 1, 0, maxCount)
		if err != nil {
			return &ConfigError{Reason: fmt.Sprintf("arm count prompt: %v", err)}
		}
	}

	for i := 1; i <= count; i++ {
		spec, err := r.customArmInstance(i, &remainingOCPUs, &remainingMemory)
		if err != nil {
			return err
		}
		desired.Arm = append(desired.Arm, spec)
	}
	return nil
}

// customArmInstance allocates one Arm slot and decrements the shared
// OCPU/memory pool.
func (r *Resolver) customArmInstance(n int, remainingOCPUs, remainingMemory *int) (types.InstanceSpec, error) {
	spec := types.InstanceSpec{Hostname: fmt.Sprintf("arm-instance-%d", n)}

	if !r.opts.NonInteractive {
		hostname, err := r.prompt.String(fmt.Sprintf("Hostname for ARM instance %d", n), spec.Hostname)
		if err != nil {
			return spec, &ConfigError{Reason: fmt.Sprintf("arm hostname prompt: %v", err)}
		}
		spec.Hostname = hostname
	}

	ocpus := *remainingOCPUs
	if !r.opts.NonInteractive {
		var err error
		ocpus, err = r.prompt.Int(
			fmt.Sprintf("OCPUs for %s (1-%d)", spec.Hostname, *remainingOCPUs),
			"", *remainingOCPUs, 1, *remainingOCPUs)
		if err != nil {
			return spec, &ConfigError{Reason: fmt.Sprintf("arm ocpu prompt: %v", err)}
		}
	}
	spec.OCPUs = ocpus
	*remainingOCPUs -= ocpus

	maxMemory := ocpus * armMemoryPerOCPU
	if maxMemory > *remainingMemory {
		maxMemory = *remainingMemory
	}
	memory := maxMemory
	if !r.opts.NonInteractive {
		var err error
		memory, err = r.prompt.Int(
			fmt.Sprintf("Memory GB for %s (1-%d)", spec.Hostname, maxMemory),
			"up to 6 GB per OCPU", maxMemory, 1, maxMemory)
		if err != nil {
			return spec, &ConfigError{Reason: fmt.Sprintf("arm memory prompt: %v", err)}
		}
	}
	spec.MemoryGB = memory
	*remainingMemory -= memory

	boot := DefaultAmdBootGB
	if !r.opts.NonInteractive {
		var err error
		boot, err = r.prompt.Int(
			fmt.Sprintf("Boot volume GB for %s (%d-%d)", spec.Hostname, r.limits.MinBootVolumeGB, maxCustomBootGB),
			"", DefaultAmdBootGB, r.limits.MinBootVolumeGB, maxCustomBootGB)
		if err != nil {
			return spec, &ConfigError{Reason: fmt.Sprintf("arm boot volume prompt: %v", err)}
		}
	}
	spec.BootVolumeGB = boot

	return spec, nil
}

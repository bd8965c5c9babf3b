// Package resolver produces the target configuration for a run using one
// of several mutually exclusive strategies, bounded by quota headroom.
package resolver

import (
	"fmt"

	"github.com/oterra/oterra/quota"
	"github.com/oterra/oterra/types"
)

// Strategy selects how the desired state is produced.
type Strategy string

const (
	// StrategyReuse mirrors the instances that already exist.
	StrategyReuse Strategy = "reuse"
	// StrategyLoad parses a previously rendered variables file.
	StrategyLoad Strategy = "load"
	// StrategyCustom builds the state from prompts or defaults.
	StrategyCustom Strategy = "custom"
	// StrategyMaximize fills all remaining free-tier headroom.
	StrategyMaximize Strategy = "maximize"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyReuse, StrategyLoad, StrategyCustom, StrategyMaximize:
		return Strategy(s), nil
	default:
		return "", &ConfigError{Reason: fmt.Sprintf("unknown strategy %q (want reuse, load, custom or maximize)", s)}
	}
}

// ConfigError reports an unusable configuration input.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "config: " + e.Reason }

// Defaults used when nothing exists yet and nothing was asked for.
const (
	DefaultVcnCIDR     = "10.0.0.0/16"
	DefaultVcnDNSLabel = "mainvcn"
	DefaultAmdBootGB   = 50
	DefaultArmHostname = "arm-instance-1"
	defaultArmOCPUs    = 4
	defaultArmMemoryGB = 24
	defaultArmBootGB   = 200
	maxCustomBootGB    = 200
	armMemoryPerOCPU   = 6
)

// Options configures a Resolver.
type Options struct {
	Strategy       Strategy
	SavedPath      string // variables file read by StrategyLoad
	NonInteractive bool
	HasArmImage    bool // no Arm image in the region means no Arm slots
}

// Resolver turns a catalog and its availability into a desired state.
type Resolver struct {
	limits quota.Limits
	opts   Options
	prompt prompter
}

// New creates a resolver. Interactive prompts are used only by
// StrategyCustom and only when NonInteractive is unset.
func New(limits quota.Limits, opts Options) *Resolver {
	return &Resolver{limits: limits, opts: opts, prompt: huhPrompter{}}
}

// withPrompter swaps the interactive seam; tests script it.
func (r *Resolver) withPrompter(p prompter) *Resolver {
	r.prompt = p
	return r
}

// Resolve produces the desired state for the selected strategy. The
// result still has to pass quota validation before anything acts on it.
func (r *Resolver) Resolve(catalog *types.Catalog, avail quota.Availability) (*types.DesiredState, error) {
	switch r.opts.Strategy {
	case StrategyReuse:
		return r.resolveReuse(catalog), nil
	case StrategyLoad:
		return r.resolveSaved()
	case StrategyCustom:
		return r.resolveCustom(catalog, avail)
	case StrategyMaximize:
		return r.resolveMaximize(catalog, avail), nil
	default:
		return nil, &ConfigError{Reason: fmt.Sprintf("unknown strategy %q", r.opts.Strategy)}
	}
}

// defaultVcn is shared by every strategy: one VCN with the standard CIDR.
func defaultVcn() types.VcnSpec {
	return types.VcnSpec{Count: 1, CIDR: DefaultVcnCIDR, DNSLabel: DefaultVcnDNSLabel}
}

// mirrorInstances converts live instances into desired slots verbatim.
// Boot volume sizes are not recoverable from the instance record, so the
// family default stands in.
func mirrorInstances(live []types.Resource, bootGB int) []types.InstanceSpec {
	specs := make([]types.InstanceSpec, 0, len(live))
	for _, r := range live {
		specs = append(specs, types.InstanceSpec{
			Hostname:     r.Name,
			OCPUs:        r.OCPUs,
			MemoryGB:     r.MemoryGB,
			BootVolumeGB: bootGB,
		})
	}
	return specs
}

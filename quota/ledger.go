package quota

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oterra/oterra/types"
)

// Availability maps each quota metric to its remaining headroom.
type Availability map[Metric]int

// Violation records one metric whose desired value exceeds availability.
type Violation struct {
	Metric    Metric
	Requested int
	Available int
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: requested %d, available %d", v.Metric, v.Requested, v.Available)
}

// Error is returned by Validate when the desired state exceeds any
// ceiling. Acceptance is all-or-nothing: one violated metric rejects the
// whole state and every violation is reported together.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return "quota exceeded: " + strings.Join(parts, "; ")
}

// Ledger computes remaining capacity from a catalog snapshot.
type Ledger struct {
	limits Limits
}

// NewLedger creates a ledger over fixed ceilings.
func NewLedger(limits Limits) *Ledger {
	return &Ledger{limits: limits}
}

// Limits returns the ceilings the ledger was built with.
func (l *Ledger) Limits() Limits { return l.limits }

// Available computes per-metric headroom from the catalog. Usage counts
// every live resource regardless of who created it; the free-tier ceiling
// is tenancy-wide. Values are clamped at zero so an over-quota tenancy
// reads as "nothing available", never negative.
func (l *Ledger) Available(catalog *types.Catalog) Availability {
	used := map[Metric]int{
		AmdInstances: len(catalog.AmdInstances),
		ArmInstances: len(catalog.ArmInstances),
		ArmOCPUs:     catalog.UsedArmOCPUs(),
		ArmMemoryGB:  catalog.UsedArmMemoryGB(),
		StorageGB:    catalog.UsedStorageGB(),
		Vcns:         len(catalog.Vcns),
	}

	avail := make(Availability, len(used))
	for metric, u := range used {
		remaining := l.limits.Ceiling(metric) - u
		if remaining < 0 {
			remaining = 0
		}
		avail[metric] = remaining
	}
	return avail
}

// Validate checks a desired state against availability. The desired state
// describes the full target, so additional demand is computed relative to
// what the catalog already holds; Available already subtracted current
// usage from the ceilings.
//
// Validate has no side effects: a rejected state leaves ledger, catalog
// and desired state untouched.
func (l *Ledger) Validate(desired *types.DesiredState, avail Availability, catalog *types.Catalog) error {
	demand := map[Metric]int{
		AmdInstances: desired.AmdCount() - len(catalog.AmdInstances),
		ArmInstances: desired.ArmCount() - len(catalog.ArmInstances),
		ArmOCPUs:     desired.ArmOCPUs() - catalog.UsedArmOCPUs(),
		ArmMemoryGB:  desired.ArmMemoryGB() - catalog.UsedArmMemoryGB(),
		StorageGB:    desired.StorageGB() - catalog.UsedStorageGB(),
		Vcns:         desired.Vcn.Count - len(catalog.Vcns),
	}

	var violations []Violation
	for metric, d := range demand {
		if d > avail[metric] {
			violations = append(violations, Violation{
				Metric:    metric,
				Requested: d,
				Available: avail[metric],
			})
		}
	}
	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool {
			return violations[i].Metric < violations[j].Metric
		})
		return &Error{Violations: violations}
	}
	return nil
}

// Package planner diffs desired state against the live catalog and the
// declarative tool's tracked addresses, producing an ordered action list.
package planner

import (
	"github.com/oterra/oterra/types"
)

// Plan computes the ordered actions that converge the tracked state onto
// the desired state. It is a pure function of its inputs: identical
// inputs yield identical output, and re-running with the emitted
// addresses tracked yields only skips.
//
// For each address implied by the desired state:
//  1. already tracked            -> Skip
//  2. a live resource matches it -> Import (positional within kind)
//  3. otherwise                  -> Create
//
// Network resources come first, then compute, then volumes: instances
// need resolvable network ids, attachments need instance ids. Live
// resources beyond the declared counts are left untouched; deletion is
// out of scope.
func Plan(desired *types.DesiredState, catalog *types.Catalog, tracked types.Tracked) []types.Action {
	var actions []types.Action
	actions = append(actions, planNetwork(desired, catalog, tracked)...)
	actions = append(actions, planInstances(desired, catalog, tracked)...)
	actions = append(actions, planVolumes(desired, catalog, tracked)...)
	return actions
}

// planNetwork plans the VCN and its sub-resources. Positional matching:
// the first live VCN backs the declared VCN, and sub-resources are
// matched within that VCN only.
func planNetwork(desired *types.DesiredState, catalog *types.Catalog, tracked types.Tracked) []types.Action {
	if desired.Vcn.Count == 0 {
		return nil
	}

	var actions []types.Action

	var liveVcnID string
	if len(catalog.Vcns) > 0 {
		liveVcnID = catalog.Vcns[0].ID
	}
	actions = append(actions, resolveAction(AddrVcn, types.KindVcn, liveVcnID, tracked))

	sub := []struct {
		address string
		kind    types.Kind
		live    []types.Resource
	}{
		{AddrInternetGateway, types.KindInternetGateway, catalog.InternetGateways},
		{AddrSubnet, types.KindSubnet, catalog.Subnets},
		{AddrRouteTable, types.KindRouteTable, catalog.RouteTables},
		{AddrSecurityList, types.KindSecurityList, catalog.SecurityLists},
	}
	for _, s := range sub {
		id := firstInVcn(s.live, liveVcnID)
		actions = append(actions, resolveAction(s.address, s.kind, id, tracked))
	}

	return actions
}

// planInstances plans one action per declared slot, Amd before Arm.
func planInstances(desired *types.DesiredState, catalog *types.Catalog, tracked types.Tracked) []types.Action {
	var actions []types.Action
	for _, family := range []types.Family{types.FamilyAmd, types.FamilyArm} {
		live := catalog.Instances(family)
		for i := range desired.Specs(family) {
			var id string
			if i < len(live) {
				id = live[i].ID
			}
			actions = append(actions, resolveAction(InstanceAddress(family, i), types.KindInstance, id, tracked))
		}
	}
	return actions
}

// planVolumes plans block volumes and their attachments for slots that
// declare one. Attachments are never importable by position (their ids
// are compound); an untracked attachment is always a Create.
func planVolumes(desired *types.DesiredState, catalog *types.Catalog, tracked types.Tracked) []types.Action {
	var actions []types.Action
	for _, family := range []types.Family{types.FamilyAmd, types.FamilyArm} {
		liveIdx := 0
		for i, spec := range desired.Specs(family) {
			if spec.BlockVolumeGB <= 0 {
				continue
			}
			var id string
			if liveIdx < len(catalog.BlockVolumes) {
				id = catalog.BlockVolumes[liveIdx].ID
			}
			liveIdx++
			actions = append(actions, resolveAction(VolumeAddress(family, i), types.KindBlockVolume, id, tracked))
			actions = append(actions, resolveAction(AttachmentAddress(family, i), types.KindBlockVolume, "", tracked))
		}
	}
	return actions
}

// resolveAction applies the skip/import/create cascade for one address.
func resolveAction(address string, kind types.Kind, liveID string, tracked types.Tracked) types.Action {
	if tracked.Contains(address) {
		return types.Action{Op: types.OpSkip, Address: address, Kind: kind}
	}
	if liveID != "" {
		return types.Action{Op: types.OpImport, Address: address, Kind: kind, ResourceID: liveID}
	}
	return types.Action{Op: types.OpCreate, Address: address, Kind: kind}
}

// firstInVcn returns the id of the first live resource belonging to the
// given VCN, or "" when the VCN itself is not live yet.
func firstInVcn(live []types.Resource, vcnID string) string {
	if vcnID == "" {
		return ""
	}
	for _, r := range live {
		if r.VcnID == vcnID {
			return r.ID
		}
	}
	return ""
}

// Package inventory discovers what already exists in the tenancy. The
// scan is the sole source of truth for a run: no state from previous
// runs is consulted, the catalog is rebuilt from live API responses
// every time.
package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/oterra/oterra/types"
)

// ComputeAPI lists instances and resolves their per-instance details.
type ComputeAPI interface {
	ListInstances(ctx context.Context) ([]types.Resource, error)
	InstanceShapeConfig(ctx context.Context, instanceID string) (ocpus, memoryGB int, err error)
	InstanceIPs(ctx context.Context, instanceID string) (publicIP, privateIP *string, err error)
}

// NetworkAPI lists the VCNs and their attached networking resources.
type NetworkAPI interface {
	ListVcns(ctx context.Context) ([]types.Resource, error)
	ListSubnets(ctx context.Context, vcnID string) ([]types.Resource, error)
	ListInternetGateways(ctx context.Context, vcnID string) ([]types.Resource, error)
	ListRouteTables(ctx context.Context, vcnID string) ([]types.Resource, error)
	ListSecurityLists(ctx context.Context, vcnID string) ([]types.Resource, error)
}

// StorageAPI lists boot and block volumes.
type StorageAPI interface {
	ListBootVolumes(ctx context.Context) ([]types.Resource, error)
	ListBlockVolumes(ctx context.Context) ([]types.Resource, error)
}

// Scanner walks the tenancy and produces a catalog.
type Scanner struct {
	compute ComputeAPI
	network NetworkAPI
	storage StorageAPI
}

// NewScanner creates a scanner over the given API surfaces.
func NewScanner(compute ComputeAPI, network NetworkAPI, storage StorageAPI) *Scanner {
	return &Scanner{compute: compute, network: network, storage: storage}
}

// Scan inventories compute, networking and storage concurrently.
//
// A failed primary listing fails the whole scan: acting on a partial
// catalog would mean planning against resources we cannot see.
// Secondary lookups (IP addresses, flexible shape allocations) degrade
// instead, the record keeps nil or zero fields.
func (s *Scanner) Scan(ctx context.Context) (*types.Catalog, error) {
	var wg sync.WaitGroup
	var (
		computeRes, networkRes, storageRes []types.Resource
		computeErr, networkErr, storageErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		computeRes, computeErr = s.scanCompute(ctx)
	}()
	go func() {
		defer wg.Done()
		networkRes, networkErr = s.scanNetwork(ctx)
	}()
	go func() {
		defer wg.Done()
		storageRes, storageErr = s.scanStorage(ctx)
	}()
	wg.Wait()

	for _, err := range []error{networkErr, computeErr, storageErr} {
		if err != nil {
			return nil, err
		}
	}

	catalog := &types.Catalog{}
	for _, batch := range [][]types.Resource{networkRes, computeRes, storageRes} {
		for _, r := range batch {
			catalog.Add(r)
		}
	}

	log.Info().
		Int("vcns", len(catalog.Vcns)).
		Int("amd_instances", len(catalog.AmdInstances)).
		Int("arm_instances", len(catalog.ArmInstances)).
		Int("non_managed", len(catalog.NonManaged)).
		Int("storage_gb", catalog.UsedStorageGB()).
		Msg("scan complete")
	return catalog, nil
}

func (s *Scanner) scanCompute(ctx context.Context) ([]types.Resource, error) {
	instances, err := s.compute.ListInstances(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]types.Resource, 0, len(instances))
	for _, inst := range instances {
		family, managed := types.ClassifyShape(inst.Shape)
		inst.Family = family
		if !managed {
			log.Debug().
				Str("name", inst.Name).
				Str("shape", inst.Shape).
				Msg("instance outside free tier, recording as non-managed")
			out = append(out, inst)
			continue
		}

		publicIP, privateIP, err := s.compute.InstanceIPs(ctx, inst.ID)
		if err != nil {
			log.Warn().Err(err).Str("instance", inst.Name).Msg("vnic lookup failed, addresses unknown")
		} else {
			inst.PublicIP = publicIP
			inst.PrivateIP = privateIP
		}

		if family == types.FamilyArm {
			ocpus, memory, err := s.compute.InstanceShapeConfig(ctx, inst.ID)
			if err != nil {
				log.Warn().Err(err).Str("instance", inst.Name).Msg("shape config lookup failed, allocation unknown")
			} else {
				inst.OCPUs = ocpus
				inst.MemoryGB = memory
			}
		}

		out = append(out, inst)
	}
	return out, nil
}

func (s *Scanner) scanNetwork(ctx context.Context) ([]types.Resource, error) {
	vcns, err := s.network.ListVcns(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]types.Resource, 0, len(vcns))
	out = append(out, vcns...)

	for _, vcn := range vcns {
		for _, list := range []struct {
			kind string
			fn   func(context.Context, string) ([]types.Resource, error)
		}{
			{"subnets", s.network.ListSubnets},
			{"internet gateways", s.network.ListInternetGateways},
			{"route tables", s.network.ListRouteTables},
			{"security lists", s.network.ListSecurityLists},
		} {
			items, err := list.fn(ctx, vcn.ID)
			if err != nil {
				// These are primary listings too. A subnet we fail to
				// see is a subnet the planner would recreate.
				return nil, fmt.Errorf("listing %s in vcn %s: %w", list.kind, vcn.Name, err)
			}
			out = append(out, items...)
		}
	}
	return out, nil
}

func (s *Scanner) scanStorage(ctx context.Context) ([]types.Resource, error) {
	boot, err := s.storage.ListBootVolumes(ctx)
	if err != nil {
		return nil, err
	}
	block, err := s.storage.ListBlockVolumes(ctx)
	if err != nil {
		return nil, err
	}
	return append(boot, block...), nil
}

package oci

import (
	"context"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/core"

	"github.com/oterra/oterra/types"
)

// ListBootVolumes returns the available boot volumes in the first
// availability domain.
func (c *Client) ListBootVolumes(ctx context.Context) ([]types.Resource, error) {
	ad, err := c.AvailabilityDomain(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.storage.ListBootVolumes(ctx, core.ListBootVolumesRequest{
		CompartmentId:      common.String(c.tenancyID),
		AvailabilityDomain: common.String(ad),
	})
	if err != nil {
		return nil, &ConnectivityError{Op: "list boot volumes", Err: err}
	}

	var out []types.Resource
	for _, bv := range resp.Items {
		if bv.LifecycleState != core.BootVolumeLifecycleStateAvailable {
			continue
		}
		r := types.Resource{
			ID:    *bv.Id,
			Kind:  types.KindBootVolume,
			State: string(bv.LifecycleState),
		}
		if bv.DisplayName != nil {
			r.Name = *bv.DisplayName
		}
		if bv.SizeInGBs != nil {
			r.SizeGB = int(*bv.SizeInGBs)
		}
		out = append(out, r)
	}
	return out, nil
}

// ListBlockVolumes returns the available block volumes in the first
// availability domain.
func (c *Client) ListBlockVolumes(ctx context.Context) ([]types.Resource, error) {
	ad, err := c.AvailabilityDomain(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.storage.ListVolumes(ctx, core.ListVolumesRequest{
		CompartmentId:      common.String(c.tenancyID),
		AvailabilityDomain: common.String(ad),
	})
	if err != nil {
		return nil, &ConnectivityError{Op: "list block volumes", Err: err}
	}

	var out []types.Resource
	for _, v := range resp.Items {
		if v.LifecycleState != core.VolumeLifecycleStateAvailable {
			continue
		}
		r := types.Resource{
			ID:    *v.Id,
			Kind:  types.KindBlockVolume,
			State: string(v.LifecycleState),
		}
		if v.DisplayName != nil {
			r.Name = *v.DisplayName
		}
		if v.SizeInGBs != nil {
			r.SizeGB = int(*v.SizeInGBs)
		}
		out = append(out, r)
	}
	return out, nil
}

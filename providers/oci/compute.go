package oci

import (
	"context"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/core"

	"github.com/oterra/oterra/types"
)

// ListInstances returns every non-terminated instance in the tenancy
// compartment. Shape classification and IP enrichment happen above this
// layer.
func (c *Client) ListInstances(ctx context.Context) ([]types.Resource, error) {
	resp, err := c.compute.ListInstances(ctx, core.ListInstancesRequest{
		CompartmentId: common.String(c.tenancyID),
	})
	if err != nil {
		return nil, &ConnectivityError{Op: "list instances", Err: err}
	}

	var out []types.Resource
	for _, inst := range resp.Items {
		if inst.LifecycleState == core.InstanceLifecycleStateTerminated {
			continue
		}
		r := types.Resource{
			ID:    *inst.Id,
			Kind:  types.KindInstance,
			State: string(inst.LifecycleState),
		}
		if inst.DisplayName != nil {
			r.Name = *inst.DisplayName
		}
		if inst.Shape != nil {
			r.Shape = *inst.Shape
		}
		out = append(out, r)
	}
	return out, nil
}

// InstanceShapeConfig fetches the flexible-shape allocation of one
// instance. Fixed shapes report zero for both values.
func (c *Client) InstanceShapeConfig(ctx context.Context, instanceID string) (ocpus, memoryGB int, err error) {
	resp, err := c.compute.GetInstance(ctx, core.GetInstanceRequest{
		InstanceId: common.String(instanceID),
	})
	if err != nil {
		return 0, 0, &ConnectivityError{Op: "get instance", Err: err}
	}
	if resp.ShapeConfig == nil {
		return 0, 0, nil
	}
	if resp.ShapeConfig.Ocpus != nil {
		ocpus = int(*resp.ShapeConfig.Ocpus)
	}
	if resp.ShapeConfig.MemoryInGBs != nil {
		memoryGB = int(*resp.ShapeConfig.MemoryInGBs)
	}
	return ocpus, memoryGB, nil
}

// InstanceIPs resolves the public and private address of an instance's
// primary VNIC. Either pointer may come back nil when the instance has
// no address of that kind.
func (c *Client) InstanceIPs(ctx context.Context, instanceID string) (publicIP, privateIP *string, err error) {
	attachments, err := c.compute.ListVnicAttachments(ctx, core.ListVnicAttachmentsRequest{
		CompartmentId: common.String(c.tenancyID),
		InstanceId:    common.String(instanceID),
	})
	if err != nil {
		return nil, nil, &ConnectivityError{Op: "list vnic attachments", Err: err}
	}
	if len(attachments.Items) == 0 || attachments.Items[0].VnicId == nil {
		return nil, nil, nil
	}

	vnic, err := c.network.GetVnic(ctx, core.GetVnicRequest{
		VnicId: attachments.Items[0].VnicId,
	})
	if err != nil {
		return nil, nil, &ConnectivityError{Op: "get vnic", Err: err}
	}
	return vnic.PublicIp, vnic.PrivateIp, nil
}

// LatestImage returns the OCID of the newest Canonical Ubuntu image
// compatible with the given shape, or empty when the region has none.
func (c *Client) LatestImage(ctx context.Context, shape string) (string, error) {
	resp, err := c.compute.ListImages(ctx, core.ListImagesRequest{
		CompartmentId:   common.String(c.tenancyID),
		OperatingSystem: common.String("Canonical Ubuntu"),
		Shape:           common.String(shape),
		SortBy:          core.ListImagesSortByTimecreated,
		SortOrder:       core.ListImagesSortOrderDesc,
		Limit:           common.Int(1),
	})
	if err != nil {
		return "", &ConnectivityError{Op: "list images", Err: err}
	}
	if len(resp.Items) == 0 {
		return "", nil
	}
	return *resp.Items[0].Id, nil
}

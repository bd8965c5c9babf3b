package oci

import (
	"context"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/core"

	"github.com/oterra/oterra/types"
)

// ListVcns returns the available VCNs in the tenancy compartment.
func (c *Client) ListVcns(ctx context.Context) ([]types.Resource, error) {
	resp, err := c.network.ListVcns(ctx, core.ListVcnsRequest{
		CompartmentId: common.String(c.tenancyID),
	})
	if err != nil {
		return nil, &ConnectivityError{Op: "list vcns", Err: err}
	}

	var out []types.Resource
	for _, vcn := range resp.Items {
		if vcn.LifecycleState != core.VcnLifecycleStateAvailable {
			continue
		}
		r := types.Resource{
			ID:    *vcn.Id,
			Kind:  types.KindVcn,
			State: string(vcn.LifecycleState),
		}
		if vcn.DisplayName != nil {
			r.Name = *vcn.DisplayName
		}
		if len(vcn.CidrBlocks) > 0 {
			r.CIDR = vcn.CidrBlocks[0]
		}
		out = append(out, r)
	}
	return out, nil
}

// ListSubnets returns the available subnets of one VCN.
func (c *Client) ListSubnets(ctx context.Context, vcnID string) ([]types.Resource, error) {
	resp, err := c.network.ListSubnets(ctx, core.ListSubnetsRequest{
		CompartmentId: common.String(c.tenancyID),
		VcnId:         common.String(vcnID),
	})
	if err != nil {
		return nil, &ConnectivityError{Op: "list subnets", Err: err}
	}

	var out []types.Resource
	for _, subnet := range resp.Items {
		if subnet.LifecycleState != core.SubnetLifecycleStateAvailable {
			continue
		}
		r := types.Resource{
			ID:    *subnet.Id,
			Kind:  types.KindSubnet,
			State: string(subnet.LifecycleState),
			VcnID: vcnID,
		}
		if subnet.DisplayName != nil {
			r.Name = *subnet.DisplayName
		}
		if subnet.CidrBlock != nil {
			r.CIDR = *subnet.CidrBlock
		}
		out = append(out, r)
	}
	return out, nil
}

// ListInternetGateways returns the available internet gateways of one VCN.
func (c *Client) ListInternetGateways(ctx context.Context, vcnID string) ([]types.Resource, error) {
	resp, err := c.network.ListInternetGateways(ctx, core.ListInternetGatewaysRequest{
		CompartmentId: common.String(c.tenancyID),
		VcnId:         common.String(vcnID),
	})
	if err != nil {
		return nil, &ConnectivityError{Op: "list internet gateways", Err: err}
	}

	var out []types.Resource
	for _, ig := range resp.Items {
		if ig.LifecycleState != core.InternetGatewayLifecycleStateAvailable {
			continue
		}
		r := types.Resource{
			ID:    *ig.Id,
			Kind:  types.KindInternetGateway,
			State: string(ig.LifecycleState),
			VcnID: vcnID,
		}
		if ig.DisplayName != nil {
			r.Name = *ig.DisplayName
		}
		out = append(out, r)
	}
	return out, nil
}

// ListRouteTables returns the route tables of one VCN, default included.
func (c *Client) ListRouteTables(ctx context.Context, vcnID string) ([]types.Resource, error) {
	resp, err := c.network.ListRouteTables(ctx, core.ListRouteTablesRequest{
		CompartmentId: common.String(c.tenancyID),
		VcnId:         common.String(vcnID),
	})
	if err != nil {
		return nil, &ConnectivityError{Op: "list route tables", Err: err}
	}

	var out []types.Resource
	for _, rt := range resp.Items {
		r := types.Resource{
			ID:    *rt.Id,
			Kind:  types.KindRouteTable,
			State: string(rt.LifecycleState),
			VcnID: vcnID,
		}
		if rt.DisplayName != nil {
			r.Name = *rt.DisplayName
		}
		out = append(out, r)
	}
	return out, nil
}

// ListSecurityLists returns the security lists of one VCN, default included.
func (c *Client) ListSecurityLists(ctx context.Context, vcnID string) ([]types.Resource, error) {
	resp, err := c.network.ListSecurityLists(ctx, core.ListSecurityListsRequest{
		CompartmentId: common.String(c.tenancyID),
		VcnId:         common.String(vcnID),
	})
	if err != nil {
		return nil, &ConnectivityError{Op: "list security lists", Err: err}
	}

	var out []types.Resource
	for _, sl := range resp.Items {
		r := types.Resource{
			ID:    *sl.Id,
			Kind:  types.KindSecurityList,
			State: string(sl.LifecycleState),
			VcnID: vcnID,
		}
		if sl.DisplayName != nil {
			r.Name = *sl.DisplayName
		}
		out = append(out, r)
	}
	return out, nil
}

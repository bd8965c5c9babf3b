package planner

import (
	"fmt"

	"github.com/oterra/oterra/types"
)

// Terraform addresses for the managed resources. The VCN and its
// sub-resources are singletons; instances and volumes are indexed by
// declared slot.
const (
	AddrVcn             = "oci_core_vcn.main"
	AddrInternetGateway = "oci_core_internet_gateway.main"
	AddrSubnet          = "oci_core_subnet.main"
	AddrRouteTable      = "oci_core_default_route_table.main"
	AddrSecurityList    = "oci_core_default_security_list.main"
)

// InstanceAddress returns the address of the Nth declared instance slot
// of a family.
func InstanceAddress(family types.Family, index int) string {
	return fmt.Sprintf("oci_core_instance.%s[%d]", family, index)
}

// VolumeAddress returns the address of the block volume attached to the
// Nth declared slot of a family.
func VolumeAddress(family types.Family, index int) string {
	return fmt.Sprintf("oci_core_volume.%s_block[%d]", family, index)
}

// AttachmentAddress returns the address of the volume attachment for the
// Nth declared slot of a family.
func AttachmentAddress(family types.Family, index int) string {
	return fmt.Sprintf("oci_core_volume_attachment.%s_block[%d]", family, index)
}

// CandidateAddresses lists every address the desired state could occupy.
// Callers use it to query which addresses are already tracked before
// planning.
func CandidateAddresses(desired *types.DesiredState) []string {
	addrs := []string{AddrVcn, AddrInternetGateway, AddrSubnet, AddrRouteTable, AddrSecurityList}
	for _, family := range []types.Family{types.FamilyAmd, types.FamilyArm} {
		for i, spec := range desired.Specs(family) {
			addrs = append(addrs, InstanceAddress(family, i))
			if spec.BlockVolumeGB > 0 {
				addrs = append(addrs, VolumeAddress(family, i), AttachmentAddress(family, i))
			}
		}
	}
	return addrs
}

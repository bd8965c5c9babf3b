package types

// Family classifies a managed compute instance by its free-tier shape.
type Family string

const (
	FamilyAmd Family = "amd"
	FamilyArm Family = "arm"
)

// Kind identifies the class of a cloud resource.
type Kind string

const (
	KindVcn             Kind = "vcn"
	KindSubnet          Kind = "subnet"
	KindInternetGateway Kind = "internet_gateway"
	KindRouteTable      Kind = "route_table"
	KindSecurityList    Kind = "security_list"
	KindInstance        Kind = "instance"
	KindBootVolume      Kind = "boot_volume"
	KindBlockVolume     Kind = "block_volume"
)

// Free-tier shapes recognized by the inventory. Instances with any other
// shape are recorded as non-managed and excluded from quota accounting.
const (
	ShapeAmdMicro = "VM.Standard.E2.1.Micro"
	ShapeArmFlex  = "VM.Standard.A1.Flex"
)

// Resource is an immutable snapshot of one live cloud resource, taken
// during a single scan. It is never persisted across runs.
type Resource struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"kind"`
	Name     string `json:"name"`
	State    string `json:"state"`
	Shape    string `json:"shape,omitempty"`
	Family   Family `json:"family,omitempty"`
	OCPUs    int    `json:"ocpus,omitempty"`
	MemoryGB int    `json:"memory_gb,omitempty"`
	SizeGB   int    `json:"size_gb,omitempty"`

	// IP fields are nil when the secondary VNIC lookup failed. The record
	// is still counted against quota; dropping it would under-count usage.
	PublicIP  *string `json:"public_ip,omitempty"`
	PrivateIP *string `json:"private_ip,omitempty"`

	// VcnID links subnets, gateways, route tables and security lists to
	// their parent VCN.
	VcnID string `json:"vcn_id,omitempty"`
	CIDR  string `json:"cidr,omitempty"`
}

// IsInstance reports whether the resource is a managed compute instance.
func (r Resource) IsInstance() bool {
	return r.Kind == KindInstance && r.Family != ""
}

// ClassifyShape maps a shape string to its free-tier family.
// The second return is false for shapes outside the free tier.
func ClassifyShape(shape string) (Family, bool) {
	switch shape {
	case ShapeAmdMicro:
		return FamilyAmd, true
	case ShapeArmFlex:
		return FamilyArm, true
	default:
		return "", false
	}
}

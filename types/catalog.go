package types

// Catalog is the normalized snapshot of all live resources found by one
// scan. It is rebuilt from scratch every run; nothing carries over.
type Catalog struct {
	Vcns             []Resource `json:"vcns"`
	Subnets          []Resource `json:"subnets"`
	InternetGateways []Resource `json:"internet_gateways"`
	RouteTables      []Resource `json:"route_tables"`
	SecurityLists    []Resource `json:"security_lists"`
	AmdInstances     []Resource `json:"amd_instances"`
	ArmInstances     []Resource `json:"arm_instances"`
	BootVolumes      []Resource `json:"boot_volumes"`
	BlockVolumes     []Resource `json:"block_volumes"`

	// NonManaged holds instances whose shape is outside the free tier.
	// They are reported but never counted against quota.
	NonManaged []Resource `json:"non_managed,omitempty"`
}

// Add classifies a resource into its catalog bucket.
func (c *Catalog) Add(r Resource) {
	switch r.Kind {
	case KindVcn:
		c.Vcns = append(c.Vcns, r)
	case KindSubnet:
		c.Subnets = append(c.Subnets, r)
	case KindInternetGateway:
		c.InternetGateways = append(c.InternetGateways, r)
	case KindRouteTable:
		c.RouteTables = append(c.RouteTables, r)
	case KindSecurityList:
		c.SecurityLists = append(c.SecurityLists, r)
	case KindBootVolume:
		c.BootVolumes = append(c.BootVolumes, r)
	case KindBlockVolume:
		c.BlockVolumes = append(c.BlockVolumes, r)
	case KindInstance:
		switch r.Family {
		case FamilyAmd:
			c.AmdInstances = append(c.AmdInstances, r)
		case FamilyArm:
			c.ArmInstances = append(c.ArmInstances, r)
		default:
			c.NonManaged = append(c.NonManaged, r)
		}
	}
}

// Instances returns the managed instances of one family, in catalog order.
func (c *Catalog) Instances(f Family) []Resource {
	if f == FamilyAmd {
		return c.AmdInstances
	}
	return c.ArmInstances
}

// UsedArmOCPUs sums OCPUs across all Arm instances, regardless of who
// created them. Quota ceilings are tenancy-wide.
func (c *Catalog) UsedArmOCPUs() int {
	total := 0
	for _, r := range c.ArmInstances {
		total += r.OCPUs
	}
	return total
}

// UsedArmMemoryGB sums memory across all Arm instances.
func (c *Catalog) UsedArmMemoryGB() int {
	total := 0
	for _, r := range c.ArmInstances {
		total += r.MemoryGB
	}
	return total
}

// UsedStorageGB sums boot plus block volume capacity in the scanned
// availability domain.
func (c *Catalog) UsedStorageGB() int {
	total := 0
	for _, r := range c.BootVolumes {
		total += r.SizeGB
	}
	for _, r := range c.BlockVolumes {
		total += r.SizeGB
	}
	return total
}

// TotalResources counts every record in the catalog, non-managed included.
func (c *Catalog) TotalResources() int {
	return len(c.Vcns) + len(c.Subnets) + len(c.InternetGateways) +
		len(c.RouteTables) + len(c.SecurityLists) +
		len(c.AmdInstances) + len(c.ArmInstances) +
		len(c.BootVolumes) + len(c.BlockVolumes) + len(c.NonManaged)
}

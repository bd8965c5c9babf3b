package terraform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/oterra/oterra/quota"
	"github.com/oterra/oterra/types"
)

// Metadata carries the tenancy-level values the templates need.
type Metadata struct {
	TenancyID        string
	UserID           string
	Region           string
	AmdImageID       string
	ArmImageID       string
	SSHPublicKeyPath string
}

// Renderer writes the terraform configuration for a desired state into
// a working directory. Existing files are backed up, never overwritten
// silently.
type Renderer struct {
	dir    string
	limits quota.Limits
}

// NewRenderer creates a renderer targeting dir.
func NewRenderer(dir string, limits quota.Limits) *Renderer {
	return &Renderer{dir: dir, limits: limits}
}

// RenderAll writes every configuration file for the desired state.
func (r *Renderer) RenderAll(desired *types.DesiredState, meta Metadata) error {
	files := []struct {
		name    string
		content string
	}{
		{"provider.tf", r.providerTF(meta)},
		{"variables.tf", r.variablesTF(desired, meta)},
		{"data_sources.tf", dataSourcesTF},
		{"main.tf", r.mainTF(desired)},
		{"block_volumes.tf", blockVolumesTF},
		{"cloud-init.yaml", cloudInitYAML},
	}

	for _, f := range files {
		if err := r.write(f.name, f.content); err != nil {
			return fmt.Errorf("render %s: %w", f.name, err)
		}
	}

	log.Info().Str("dir", r.dir).Int("files", len(files)).Msg("configuration rendered")
	return nil
}

// write backs up any existing file and writes the new content.
func (r *Renderer) write(name, content string) error {
	path := filepath.Join(r.dir, name)
	if _, err := os.Stat(path); err == nil {
		backup := fmt.Sprintf("%s.bak.%s", path, time.Now().Format("20060102_150405"))
		if err := os.Rename(path, backup); err != nil {
			return fmt.Errorf("backup: %w", err)
		}
		log.Debug().Str("file", name).Str("backup", backup).Msg("backed up existing file")
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func (r *Renderer) providerTF(meta Metadata) string {
	return fmt.Sprintf(`# Provider configuration for Oracle Cloud Infrastructure
# Region: %s

terraform {
  required_version = ">= 1.0"
  required_providers {
    oci = {
      source  = "oracle/oci"
      version = "~> 6.0"
    }
  }
}

provider "oci" {
  auth                = "SecurityToken"
  config_file_profile = "DEFAULT"
  region              = "%s"
}
`, meta.Region, meta.Region)
}

func (r *Renderer) variablesTF(desired *types.DesiredState, meta Metadata) string {
	amdBoot := 50
	if len(desired.Amd) > 0 {
		amdBoot = desired.Amd[0].BootVolumeGB
	}

	var amdHostnames, armHostnames []string
	var armOCPUs, armMemory, armBoot, armBlock []int
	for _, spec := range desired.Amd {
		amdHostnames = append(amdHostnames, spec.Hostname)
	}
	for _, spec := range desired.Arm {
		armHostnames = append(armHostnames, spec.Hostname)
		armOCPUs = append(armOCPUs, spec.OCPUs)
		armMemory = append(armMemory, spec.MemoryGB)
		armBoot = append(armBoot, spec.BootVolumeGB)
		armBlock = append(armBlock, spec.BlockVolumeGB)
	}

	return fmt.Sprintf(`# Generated variables, one run's desired state.
# Configuration: %dx AMD + %dx ARM instances

locals {
  tenancy_ocid   = "%s"
  compartment_id = "%s"
  user_ocid      = "%s"
  region         = "%s"

  ubuntu_x86_image_ocid = "%s"
  ubuntu_arm_image_ocid = "%s"

  ssh_pubkey_path = pathexpand("%s")
  ssh_pubkey_data = file(pathexpand("%s"))

  amd_micro_instance_count      = %d
  amd_micro_boot_volume_size_gb = %d
  amd_micro_hostnames           = %s
  amd_block_volume_size_gb      = 0

  arm_flex_instance_count      = %d
  arm_flex_ocpus_per_instance  = %s
  arm_flex_memory_per_instance = %s
  arm_flex_boot_volume_size_gb = %s
  arm_flex_hostnames           = %s
  arm_block_volume_sizes       = %s

  total_amd_storage   = local.amd_micro_instance_count * local.amd_micro_boot_volume_size_gb
  total_arm_storage   = local.arm_flex_instance_count > 0 ? sum(local.arm_flex_boot_volume_size_gb) : 0
  total_block_storage = local.arm_flex_instance_count > 0 ? sum(local.arm_block_volume_sizes) : 0
  total_storage       = local.total_amd_storage + local.total_arm_storage + local.total_block_storage
}

variable "free_tier_max_storage_gb" {
  type    = number
  default = %d
}

variable "free_tier_max_arm_ocpus" {
  type    = number
  default = %d
}

variable "free_tier_max_arm_memory_gb" {
  type    = number
  default = %d
}

check "storage_limit" {
  assert {
    condition     = local.total_storage <= var.free_tier_max_storage_gb
    error_message = "Total storage exceeds the free tier limit"
  }
}

check "arm_ocpu_limit" {
  assert {
    condition     = local.arm_flex_instance_count == 0 || sum(local.arm_flex_ocpus_per_instance) <= var.free_tier_max_arm_ocpus
    error_message = "Total ARM OCPUs exceed the free tier limit"
  }
}

check "arm_memory_limit" {
  assert {
    condition     = local.arm_flex_instance_count == 0 || sum(local.arm_flex_memory_per_instance) <= var.free_tier_max_arm_memory_gb
    error_message = "Total ARM memory exceeds the free tier limit"
  }
}
`,
		len(desired.Amd), len(desired.Arm),
		meta.TenancyID, meta.TenancyID, meta.UserID, meta.Region,
		meta.AmdImageID, meta.ArmImageID,
		meta.SSHPublicKeyPath, meta.SSHPublicKeyPath,
		len(desired.Amd), amdBoot, hclStrings(amdHostnames),
		len(desired.Arm), hclInts(armOCPUs), hclInts(armMemory),
		hclInts(armBoot), hclStrings(armHostnames), hclInts(armBlock),
		r.limits.MaxStorageGB, r.limits.MaxArmOCPUs, r.limits.MaxArmMemoryGB,
	)
}

func (r *Renderer) mainTF(desired *types.DesiredState) string {
	cidr := desired.Vcn.CIDR
	dnsLabel := desired.Vcn.DNSLabel

	return fmt.Sprintf(`# Main configuration: networking and compute.

resource "oci_core_vcn" "main" {
  compartment_id = local.compartment_id
  cidr_blocks    = ["%s"]
  display_name   = "main-vcn"
  dns_label      = "%s"

  freeform_tags = {
    "Purpose" = "AlwaysFreeTier"
    "Managed" = "Terraform"
  }
}

resource "oci_core_internet_gateway" "main" {
  compartment_id = local.compartment_id
  vcn_id         = oci_core_vcn.main.id
  display_name   = "main-igw"
  enabled        = true
}

resource "oci_core_default_route_table" "main" {
  manage_default_resource_id = oci_core_vcn.main.default_route_table_id
  display_name               = "main-route-table"

  route_rules {
    destination       = "0.0.0.0/0"
    destination_type  = "CIDR_BLOCK"
    network_entity_id = oci_core_internet_gateway.main.id
  }
}

resource "oci_core_default_security_list" "main" {
  manage_default_resource_id = oci_core_vcn.main.default_security_list_id
  display_name               = "main-security-list"

  egress_security_rules {
    destination = "0.0.0.0/0"
    protocol    = "all"
  }

  ingress_security_rules {
    protocol = "6"
    source   = "0.0.0.0/0"
    tcp_options {
      min = 22
      max = 22
    }
  }

  ingress_security_rules {
    protocol = "1"
    source   = "0.0.0.0/0"
  }
}

resource "oci_core_subnet" "main" {
  compartment_id    = local.compartment_id
  vcn_id            = oci_core_vcn.main.id
  cidr_block        = cidrsubnet("%s", 8, 0)
  display_name      = "main-subnet"
  dns_label         = "mainsubnet"
  route_table_id    = oci_core_vcn.main.default_route_table_id
  security_list_ids = [oci_core_vcn.main.default_security_list_id]
}

resource "oci_core_instance" "amd" {
  count = local.amd_micro_instance_count

  compartment_id      = local.compartment_id
  availability_domain = data.oci_identity_availability_domains.ads.availability_domains[0].name
  display_name        = local.amd_micro_hostnames[count.index]
  shape               = "VM.Standard.E2.1.Micro"

  source_details {
    source_type             = "image"
    source_id               = local.ubuntu_x86_image_ocid
    boot_volume_size_in_gbs = local.amd_micro_boot_volume_size_gb
  }

  create_vnic_details {
    subnet_id        = oci_core_subnet.main.id
    assign_public_ip = true
    hostname_label   = local.amd_micro_hostnames[count.index]
  }

  metadata = {
    ssh_authorized_keys = local.ssh_pubkey_data
    user_data = base64encode(templatefile("cloud-init.yaml", {
      hostname = local.amd_micro_hostnames[count.index]
    }))
  }

  freeform_tags = {
    "Purpose" = "AlwaysFreeTier"
    "Managed" = "Terraform"
  }
}

resource "oci_core_instance" "arm" {
  count = local.arm_flex_instance_count

  compartment_id      = local.compartment_id
  availability_domain = data.oci_identity_availability_domains.ads.availability_domains[0].name
  display_name        = local.arm_flex_hostnames[count.index]
  shape               = "VM.Standard.A1.Flex"

  shape_config {
    ocpus         = local.arm_flex_ocpus_per_instance[count.index]
    memory_in_gbs = local.arm_flex_memory_per_instance[count.index]
  }

  source_details {
    source_type             = "image"
    source_id               = local.ubuntu_arm_image_ocid
    boot_volume_size_in_gbs = local.arm_flex_boot_volume_size_gb[count.index]
  }

  create_vnic_details {
    subnet_id        = oci_core_subnet.main.id
    assign_public_ip = true
    hostname_label   = local.arm_flex_hostnames[count.index]
  }

  metadata = {
    ssh_authorized_keys = local.ssh_pubkey_data
    user_data = base64encode(templatefile("cloud-init.yaml", {
      hostname = local.arm_flex_hostnames[count.index]
    }))
  }

  freeform_tags = {
    "Purpose" = "AlwaysFreeTier"
    "Managed" = "Terraform"
  }
}

output "amd_instance_public_ips" {
  value = [for i in oci_core_instance.amd : i.public_ip]
}

output "arm_instance_public_ips" {
  value = [for i in oci_core_instance.arm : i.public_ip]
}
`, cidr, dnsLabel, cidr)
}

const dataSourcesTF = `# Dynamic tenancy information.

data "oci_identity_availability_domains" "ads" {
  compartment_id = local.tenancy_ocid
}

data "oci_identity_tenancy" "tenancy" {
  tenancy_id = local.tenancy_ocid
}
`

const blockVolumesTF = `# Optional block volumes, attached paravirtualized.

resource "oci_core_volume" "amd_block" {
  count = local.amd_block_volume_size_gb > 0 ? local.amd_micro_instance_count : 0

  compartment_id      = local.compartment_id
  availability_domain = data.oci_identity_availability_domains.ads.availability_domains[0].name
  display_name        = "${local.amd_micro_hostnames[count.index]}-block"
  size_in_gbs         = local.amd_block_volume_size_gb

  freeform_tags = {
    "Purpose" = "AlwaysFreeTier"
    "Managed" = "Terraform"
  }
}

resource "oci_core_volume_attachment" "amd_block" {
  count = local.amd_block_volume_size_gb > 0 ? local.amd_micro_instance_count : 0

  attachment_type = "paravirtualized"
  instance_id     = oci_core_instance.amd[count.index].id
  volume_id       = oci_core_volume.amd_block[count.index].id
}

resource "oci_core_volume" "arm_block" {
  count = local.arm_flex_instance_count > 0 ? length([for s in local.arm_block_volume_sizes : s if s > 0]) : 0

  compartment_id      = local.compartment_id
  availability_domain = data.oci_identity_availability_domains.ads.availability_domains[0].name
  display_name        = "${local.arm_flex_hostnames[count.index]}-block"
  size_in_gbs         = [for s in local.arm_block_volume_sizes : s if s > 0][count.index]

  freeform_tags = {
    "Purpose" = "AlwaysFreeTier"
    "Managed" = "Terraform"
  }
}

resource "oci_core_volume_attachment" "arm_block" {
  count = local.arm_flex_instance_count > 0 ? length([for s in local.arm_block_volume_sizes : s if s > 0]) : 0

  attachment_type = "paravirtualized"
  instance_id     = oci_core_instance.arm[count.index].id
  volume_id       = oci_core_volume.arm_block[count.index].id
}
`

const cloudInitYAML = `#cloud-config
hostname: ${hostname}
fqdn: ${hostname}.local
manage_etc_hosts: true

package_update: true
package_upgrade: true

packages:
  - curl
  - wget
  - git
  - htop
  - vim
  - unzip
  - jq
  - tmux
  - net-tools

timezone: UTC
ssh_pwauth: false

write_files:
  - path: /etc/ssh/sshd_config.d/hardening.conf
    content: |
      PermitRootLogin no
      PasswordAuthentication no
      MaxAuthTries 3
      ClientAliveInterval 300
      ClientAliveCountMax 2

final_message: "Instance ${hostname} ready after $UPTIME seconds"
`

func hclStrings(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func hclInts(values []int) string {
	if len(values) == 0 {
		return "[]"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

package terraform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oterra/oterra/quota"
	"github.com/oterra/oterra/types"
)

func testDesired() *types.DesiredState {
	return &types.DesiredState{
		Vcn: types.VcnSpec{Count: 1, CIDR: "10.0.0.0/16", DNSLabel: "mainvcn"},
		Amd: []types.InstanceSpec{
			{Hostname: "web-1", BootVolumeGB: 50},
		},
		Arm: []types.InstanceSpec{
			{Hostname: "build-1", OCPUs: 3, MemoryGB: 18, BootVolumeGB: 100},
			{Hostname: "build-2", OCPUs: 1, MemoryGB: 6, BootVolumeGB: 50, BlockVolumeGB: 50},
		},
	}
}

func testMeta() Metadata {
	return Metadata{
		TenancyID:        "ocid1.tenancy.test",
		UserID:           "ocid1.user.test",
		Region:           "us-chicago-1",
		AmdImageID:       "ocid1.image.amd",
		ArmImageID:       "ocid1.image.arm",
		SSHPublicKeyPath: "./ssh_keys/id_rsa.pub",
	}
}

func TestRenderAllWritesEveryFile(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir, quota.DefaultLimits())

	require.NoError(t, r.RenderAll(testDesired(), testMeta()))

	for _, name := range []string{
		"provider.tf", "variables.tf", "data_sources.tf",
		"main.tf", "block_volumes.tf", "cloud-init.yaml",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestRenderVariablesCarriesDesiredState(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir, quota.DefaultLimits())
	require.NoError(t, r.RenderAll(testDesired(), testMeta()))

	data, err := os.ReadFile(filepath.Join(dir, "variables.tf"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "amd_micro_instance_count      = 1")
	assert.Contains(t, content, "arm_flex_instance_count      = 2")
	assert.Contains(t, content, `amd_micro_hostnames           = ["web-1"]`)
	assert.Contains(t, content, `arm_flex_hostnames           = ["build-1", "build-2"]`)
	assert.Contains(t, content, "arm_flex_ocpus_per_instance  = [3, 1]")
	assert.Contains(t, content, "arm_flex_memory_per_instance = [18, 6]")
	assert.Contains(t, content, "arm_block_volume_sizes       = [0, 50]")
	assert.Contains(t, content, `tenancy_ocid   = "ocid1.tenancy.test"`)
	assert.Contains(t, content, `region         = "us-chicago-1"`)
}

func TestRenderVariablesCarriesCeilings(t *testing.T) {
	dir := t.TempDir()
	renderer := NewRenderer(dir, quota.DefaultLimits())
	require.NoError(t, renderer.RenderAll(testDesired(), testMeta()))

	data, err := os.ReadFile(filepath.Join(dir, "variables.tf"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "variable \"free_tier_max_storage_gb\" {\n  type    = number\n  default = 200\n}")
	assert.Contains(t, content, "variable \"free_tier_max_arm_ocpus\" {\n  type    = number\n  default = 4\n}")
	assert.Contains(t, content, "variable \"free_tier_max_arm_memory_gb\" {\n  type    = number\n  default = 24\n}")
}

func TestRenderMainUsesDesiredNetwork(t *testing.T) {
	dir := t.TempDir()
	desired := testDesired()
	desired.Vcn.CIDR = "172.16.0.0/16"
	desired.Vcn.DNSLabel = "othervcn"

	r := NewRenderer(dir, quota.DefaultLimits())
	require.NoError(t, r.RenderAll(desired, testMeta()))

	data, err := os.ReadFile(filepath.Join(dir, "main.tf"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, `cidr_blocks    = ["172.16.0.0/16"]`)
	assert.Contains(t, content, `dns_label      = "othervcn"`)
	assert.Contains(t, content, `resource "oci_core_instance" "amd"`)
	assert.Contains(t, content, `resource "oci_core_instance" "arm"`)
	assert.Contains(t, content, `resource "oci_core_default_route_table" "main"`)
	assert.Contains(t, content, `resource "oci_core_default_security_list" "main"`)
}

func TestRenderBacksUpExistingFiles(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "variables.tf")
	require.NoError(t, os.WriteFile(original, []byte("# old content"), 0o644))

	r := NewRenderer(dir, quota.DefaultLimits())
	require.NoError(t, r.RenderAll(testDesired(), testMeta()))

	matches, err := filepath.Glob(original + ".bak.*")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	backup, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "# old content", string(backup))

	fresh, err := os.ReadFile(original)
	require.NoError(t, err)
	assert.NotEqual(t, "# old content", string(fresh))
}

func TestRenderEmptyDesiredState(t *testing.T) {
	dir := t.TempDir()
	desired := &types.DesiredState{
		Vcn: types.VcnSpec{Count: 1, CIDR: "10.0.0.0/16", DNSLabel: "mainvcn"},
	}

	r := NewRenderer(dir, quota.DefaultLimits())
	require.NoError(t, r.RenderAll(desired, testMeta()))

	data, err := os.ReadFile(filepath.Join(dir, "variables.tf"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "amd_micro_instance_count      = 0")
	assert.Contains(t, content, "amd_micro_hostnames           = []")
	assert.Contains(t, content, "arm_flex_ocpus_per_instance  = []")
}

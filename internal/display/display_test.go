package display

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oterra/oterra/quota"
	"github.com/oterra/oterra/types"
	"github.com/oterra/oterra/wal"
)

func TestInventoryRendersUsage(t *testing.T) {
	catalog := &types.Catalog{}
	catalog.Add(types.Resource{Kind: types.KindInstance, Family: types.FamilyArm, OCPUs: 4, MemoryGB: 24})
	catalog.Add(types.Resource{Kind: types.KindBootVolume, SizeGB: 100})
	catalog.Add(types.Resource{Kind: types.KindInstance, Name: "paid", Shape: "VM.Standard3.Flex"})

	var buf bytes.Buffer
	Inventory(&buf, catalog, quota.DefaultLimits())
	out := buf.String()

	assert.Contains(t, out, "ARM OCPUS")
	assert.Contains(t, out, "STORAGE (GB)")
	assert.Contains(t, out, "NON-MANAGED INSTANCES")
}

func TestInventoryRendersCeilings(t *testing.T) {
	limits := quota.Limits{
		MaxAmdInstances: 2,
		MaxArmInstances: 4,
		MaxArmOCPUs:     4,
		MaxArmMemoryGB:  24,
		MaxStorageGB:    200,
		MaxVcns:         2,
		MinBootVolumeGB: 47,
	}

	var buf bytes.Buffer
	Inventory(&buf, &types.Catalog{}, limits)
	out := buf.String()

	assert.Contains(t, out, "24")
	assert.Contains(t, out, "200")
}

func TestPlanRendersCounts(t *testing.T) {
	actions := []types.Action{
		{Op: types.OpSkip, Address: "oci_core_vcn.main", Kind: types.KindVcn},
		{Op: types.OpImport, Address: "oci_core_instance.amd[0]", Kind: types.KindInstance, ResourceID: "ocid1.instance.a"},
		{Op: types.OpCreate, Address: "oci_core_instance.arm[0]", Kind: types.KindInstance},
	}

	var buf bytes.Buffer
	Plan(&buf, actions)
	out := buf.String()

	assert.Contains(t, out, "oci_core_instance.amd[0]")
	assert.Contains(t, out, "1 SKIP / 1 IMPORT / 1 CREATE")
}

func TestHistoryRendersEntries(t *testing.T) {
	entries := []wal.Entry{
		{Timestamp: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC), Type: wal.EntryObserved},
		{Timestamp: time.Date(2026, 8, 30, 10, 0, 5, 0, time.UTC), Type: wal.EntryImported, ResourceID: "ocid1.vcn.main"},
		{Timestamp: time.Date(2026, 8, 30, 10, 1, 0, 0, time.UTC), Type: wal.EntryFailed, Error: "out of host capacity"},
	}

	var buf bytes.Buffer
	History(&buf, entries)
	out := buf.String()

	assert.Contains(t, out, "2026-08-30 10:00:05")
	assert.Contains(t, out, "ocid1.vcn.main")
	assert.Contains(t, out, "out of host capacity")
	assert.Contains(t, out, "3 ENTRIES")
}

func TestRunSummary(t *testing.T) {
	var buf bytes.Buffer
	RunSummary(&buf, 3, 2, 1, true)
	out := buf.String()

	assert.Contains(t, out, "Imported")
	assert.Contains(t, out, "complete")
}

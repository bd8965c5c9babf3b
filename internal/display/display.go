// Package display renders run information as terminal tables.
package display

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/oterra/oterra/quota"
	"github.com/oterra/oterra/types"
	"github.com/oterra/oterra/wal"
)

// Inventory renders the scanned catalog against the free-tier ceilings.
func Inventory(w io.Writer, catalog *types.Catalog, limits quota.Limits) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Resource", "Used", "Limit"})

	rows := []struct {
		name  string
		used  int
		limit int
	}{
		{"AMD instances", len(catalog.AmdInstances), limits.MaxAmdInstances},
		{"ARM instances", len(catalog.ArmInstances), limits.MaxArmInstances},
		{"ARM OCPUs", catalog.UsedArmOCPUs(), limits.MaxArmOCPUs},
		{"ARM memory (GB)", catalog.UsedArmMemoryGB(), limits.MaxArmMemoryGB},
		{"Storage (GB)", catalog.UsedStorageGB(), limits.MaxStorageGB},
		{"VCNs", len(catalog.Vcns), limits.MaxVcns},
	}
	for _, r := range rows {
		used := fmt.Sprintf("%d", r.used)
		if r.used >= r.limit {
			used = text.FgYellow.Sprintf("%d", r.used)
		}
		tw.AppendRow(table.Row{r.name, used, r.limit})
	}

	if len(catalog.NonManaged) > 0 {
		tw.AppendFooter(table.Row{"Non-managed instances", len(catalog.NonManaged), "-"})
	}

	tw.SetStyle(table.StyleRounded)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	tw.Render()
}

// Plan renders the planned actions grouped by operation.
func Plan(w io.Writer, actions []types.Action) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Op", "Address", "Resource"})

	counts := map[types.Op]int{}
	for _, a := range actions {
		counts[a.Op]++
		op := string(a.Op)
		switch a.Op {
		case types.OpCreate:
			op = text.FgGreen.Sprint(op)
		case types.OpImport:
			op = text.FgCyan.Sprint(op)
		}
		tw.AppendRow(table.Row{op, a.Address, a.ResourceID})
	}

	tw.AppendFooter(table.Row{
		"",
		fmt.Sprintf("%d skip / %d import / %d create",
			counts[types.OpSkip], counts[types.OpImport], counts[types.OpCreate]),
		"",
	})
	tw.SetStyle(table.StyleRounded)
	tw.Render()
}

// Violations renders quota validation failures.
func Violations(w io.Writer, violations []quota.Violation) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Metric", "Requested", "Available"})
	for _, v := range violations {
		tw.AppendRow(table.Row{
			string(v.Metric),
			text.FgRed.Sprintf("%d", v.Requested),
			v.Available,
		})
	}
	tw.SetStyle(table.StyleRounded)
	tw.Render()
}

// History renders journal entries from past runs.
func History(w io.Writer, entries []wal.Entry) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Time", "Phase", "Resource", "Error"})

	for _, e := range entries {
		phase := string(e.Type)
		switch e.Type {
		case wal.EntryApplied:
			phase = text.FgGreen.Sprint(phase)
		case wal.EntryFailed:
			phase = text.FgRed.Sprint(phase)
		}
		tw.AppendRow(table.Row{
			e.Timestamp.Format("2006-01-02 15:04:05"),
			phase,
			e.ResourceID,
			e.Error,
		})
	}

	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d entries", len(entries)), "", ""})
	tw.SetStyle(table.StyleRounded)
	tw.Render()
}

// RunSummary renders the outcome of the terraform workflow.
func RunSummary(w io.Writer, alreadyTracked, imported, importFailed int, applied bool) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Phase", "Result"})
	tw.AppendRow(table.Row{"Already tracked", alreadyTracked})
	tw.AppendRow(table.Row{"Imported", imported})
	if importFailed > 0 {
		tw.AppendRow(table.Row{"Import failures", text.FgRed.Sprintf("%d", importFailed)})
	} else {
		tw.AppendRow(table.Row{"Import failures", 0})
	}
	if applied {
		tw.AppendRow(table.Row{"Apply", text.FgGreen.Sprint("complete")})
	} else {
		tw.AppendRow(table.Row{"Apply", "skipped"})
	}
	tw.SetStyle(table.StyleRounded)
	tw.Render()
}

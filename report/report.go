// Package report renders run reports and dry-run plans as terminal tables.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/use-agent/harvest/harvest"
	"github.com/use-agent/harvest/models"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

// WriteRun prints the per-section breakdown followed by the run summary.
func WriteRun(w io.Writer, r *models.RunReport) {
	t := newTable(w, "Harvest "+r.ID)
	t.AppendHeader(table.Row{"Section", "Options", "Planned", "Attempted", "Triggered", "Completed", "Timed out", "Failed", "Note"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})

	for _, s := range r.Sections {
		t.AppendRow(table.Row{
			s.Index + 1,
			optionCounts(s.OptionCounts),
			s.Planned,
			s.Attempted,
			s.Triggered,
			s.Completed,
			s.TimedOut,
			s.Failed(),
			sectionNote(s),
		})
	}
	t.AppendFooter(table.Row{"Total", "", r.Planned, r.Attempted, r.Triggered, r.Completed, r.TimedOut, r.Failed, ""})
	t.Render()

	fmt.Fprintf(w, "\nURL:        %s\n", r.URL)
	fmt.Fprintf(w, "Sections:   %d found, %d skipped\n", r.SectionsFound, r.SectionsSkipped)
	fmt.Fprintf(w, "Successful: %d/%d combinations\n", r.Completed, r.Attempted)
	fmt.Fprintf(w, "Files:      %d in %s\n", r.TotalArtifacts(), r.OutputDir)
	fmt.Fprintf(w, "Duration:   %s\n", r.Duration().Round(time.Second))
	if r.Interrupted {
		fmt.Fprintln(w, "Run was interrupted before all combinations were visited.")
	}
}

func sectionNote(s models.SectionReport) string {
	switch {
	case s.Skipped != "":
		return "skipped: " + s.Skipped
	case s.Attempted < s.Planned || s.Interrupted > 0:
		return "interrupted"
	case s.NoTrigger > 0:
		return fmt.Sprintf("%d without trigger", s.NoTrigger)
	}
	return ""
}

func optionCounts(counts []int) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprint(c)
	}
	return strings.Join(parts, " × ")
}

// WritePlan prints what a run over url would attempt.
func WritePlan(w io.Writer, url string, plans []harvest.SectionPlan) {
	t := newTable(w, "Plan for "+url)
	t.AppendHeader(table.Row{"Section", "Match", "Controls", "Options", "Combinations", "Trigger"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
	})

	for _, p := range plans {
		counts := make([]int, len(p.OptionSets))
		for i, set := range p.OptionSets {
			counts[i] = len(set)
		}
		match := "fallback"
		if p.Qualified {
			match = "qualified"
		}
		trigger := "missing"
		if p.HasTrigger {
			trigger = "found"
		}
		t.AppendRow(table.Row{p.Index + 1, match, len(p.OptionSets), optionCounts(counts), p.Combinations, trigger})
	}
	t.AppendFooter(table.Row{"Total", "", "", "", harvest.TotalCombinations(plans), ""})
	t.Render()
}

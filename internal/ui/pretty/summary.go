package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/volblock/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// SaveTotals condenses the outcomes returned by runner.Save.
type SaveTotals struct {
	Written int
	Backups int
	Failed  int
	Diffs   int
}

// TotalSaves counts what happened across outcomes.
func TotalSaves(outcomes []runner.SaveOutcome) SaveTotals {
	var totals SaveTotals
	for _, o := range outcomes {
		switch {
		case o.Error != nil:
			totals.Failed++
		case o.Written:
			totals.Written++
		case o.Diff.HasChanges():
			totals.Diffs++
		}
		if o.Backup {
			totals.Backups++
		}
	}
	return totals
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "3 edits in 2 files, 1 conflict, 2 files written".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats, saves SaveTotals) string {
	totals := stats.Totals
	if totals.Edits == 0 && stats.FilesErrored == 0 {
		return s.Success.Render("Nothing to rewrite") +
			s.Dim.Render(fmt.Sprintf(" (%d %s processed)",
				stats.FilesProcessed, plural(stats.FilesProcessed, wordFile, wordFiles))) + "\n"
	}

	parts := []string{fmt.Sprintf("%s %s in %d %s",
		s.Count.Render(strconv.Itoa(totals.Edits)), plural(totals.Edits, "edit", "edits"),
		stats.FilesProcessed, plural(stats.FilesProcessed, wordFile, wordFiles))}

	if totals.Conflicts > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d %s",
			totals.Conflicts, plural(totals.Conflicts, "conflict", "conflicts"))))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d %s failed to parse",
			stats.FilesErrored, plural(stats.FilesErrored, wordFile, wordFiles))))
	}
	if saves.Written > 0 {
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d %s written",
			saves.Written, plural(saves.Written, wordFile, wordFiles))))
	}
	if saves.Diffs > 0 {
		parts = append(parts, fmt.Sprintf("%d %s would change",
			saves.Diffs, plural(saves.Diffs, wordFile, wordFiles)))
	}
	if saves.Failed > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d %s not saved",
			saves.Failed, plural(saves.Failed, wordFile, wordFiles))))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block no wider than width.
func (s *Styles) FormatSummary(stats runner.Stats, saves SaveTotals, width int) string {
	divider := summaryDividerWidth
	if width > 0 && width < divider {
		divider = width
	}

	var builder strings.Builder
	row := func(label string, value int, style func(...string) string) {
		fmt.Fprintf(&builder, "  %-20s%s\n", label+":", style(strconv.Itoa(value)))
	}

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", divider))
	builder.WriteString("\n")

	row("Files selected", stats.FilesDiscovered, s.SummaryValue.Render)
	row("Files processed", stats.FilesProcessed, s.SummaryValue.Render)
	if stats.FilesErrored > 0 {
		row("Files failed", stats.FilesErrored, s.Failure.Render)
	}
	builder.WriteString("\n")

	totals := stats.Totals
	if totals.Regions > 0 {
		row("Marker blocks", totals.Regions, s.SummaryValue.Render)
	}
	row("Edits", totals.Edits, s.SummaryValue.Render)
	if totals.Skipped > 0 {
		row("Skipped", totals.Skipped, s.Dim.Render)
	}
	if totals.Unsupported > 0 {
		row("Unsupported types", totals.Unsupported, s.Warning.Render)
	}
	if totals.Conflicts > 0 {
		row("Conflicts", totals.Conflicts, s.Warning.Render)
	}
	if saves.Written > 0 {
		row("Files written", saves.Written, s.Success.Render)
	}
	if saves.Backups > 0 {
		row("Backups created", saves.Backups, s.SummaryValue.Render)
	}
	if saves.Failed > 0 {
		row("Files not saved", saves.Failed, s.Failure.Render)
	}

	builder.WriteString("\n")
	switch {
	case stats.FilesErrored > 0 || saves.Failed > 0:
		builder.WriteString(s.Failure.Render("Completed with errors"))
	case totals.Conflicts > 0 || totals.Unsupported > 0:
		builder.WriteString(s.Warning.Render("Completed with warnings"))
	default:
		builder.WriteString(s.Success.Render("Completed"))
	}
	builder.WriteString("\n")

	return builder.String()
}

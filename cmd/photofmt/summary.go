package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lorrislin/Photo-Dir-Formatter/internal/organize"
)

// renderSummary prints the per-directory verification results of an organize
// run. When pretty is set the summary is drawn as a table; otherwise it is
// emitted as plain lines suitable for pipes and logs.
func renderSummary(w io.Writer, report *organize.Report, pretty bool) {
	if report == nil || len(report.Directories) == 0 {
		fmt.Fprintln(w, "Nothing to organize: no HEIC, MOV, or MP4/MPG files found.")
		return
	}

	if pretty {
		fmt.Fprintln(w, renderSummaryTable(report))
	} else {
		renderSummaryPlain(w, report)
	}

	totals := report.Totals()
	fmt.Fprintf(w, "Directories: %d  Converted: %d  Moved: %d  Skipped: %d  Failures: %d\n",
		len(report.Directories),
		totals.Converted,
		totals.Moved,
		totals.ConversionSkips+totals.MoveSkips,
		totals.ConversionFailures+totals.MoveFailures,
	)
	if totals.Mismatches > 0 {
		fmt.Fprintf(w, "Warning: %d directories did not verify; see the log for details.\n", totals.Mismatches)
	}
}

func renderSummaryTable(report *organize.Report) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Directory", "HEIC", "MOV", "MP4", "Converted", "Moved", "Skipped", "Status"})

	for _, dir := range report.Directories {
		tw.AppendRow(table.Row{
			dir.Path,
			countCell(dir.Expected.HEIC, dir.Actual.HEIC),
			countCell(dir.Expected.MOV, dir.Actual.MOV),
			countCell(dir.Expected.MP4, dir.Actual.MP4),
			dir.Converted,
			dir.Moved,
			dir.ConversionSkips + dir.MoveSkips,
			statusCell(dir),
		})
	}

	// Count columns read better right-aligned; Directory and Status stay left.
	configs := make([]table.ColumnConfig, 0, 6)
	for col := 2; col <= 7; col++ {
		configs = append(configs, table.ColumnConfig{
			Number:      col,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func renderSummaryPlain(w io.Writer, report *organize.Report) {
	for _, dir := range report.Directories {
		fmt.Fprintf(w, "%s: heic %s, mov %s, mp4 %s, converted %d, moved %d, skipped %d, %s\n",
			dir.Path,
			countCell(dir.Expected.HEIC, dir.Actual.HEIC),
			countCell(dir.Expected.MOV, dir.Actual.MOV),
			countCell(dir.Expected.MP4, dir.Actual.MP4),
			dir.Converted,
			dir.Moved,
			dir.ConversionSkips+dir.MoveSkips,
			statusCell(dir),
		)
	}
}

// countCell renders an expected/actual pair, collapsing to a single number
// when the verification matched.
func countCell(expected, actual int) string {
	if expected == actual {
		return strconv.Itoa(actual)
	}
	return fmt.Sprintf("%d/%d", actual, expected)
}

func statusCell(dir organize.DirectoryReport) string {
	switch {
	case dir.Mismatch:
		return "mismatch"
	case dir.ConversionFailures+dir.MoveFailures > 0:
		return "errors"
	default:
		return "ok"
	}
}

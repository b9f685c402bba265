package report

// This file contains the fixed-width console summary printed at the end of
// a session.

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shellbench/shellbench/model"
)

var columnWidths = [4]int{14, 20, 20, 12}

const (
	columnSeparator = "│ "
	ruleWidth       = 70
)

// PrintSummary writes the results table. Only probes with data for at least
// one target get a row.
func PrintSummary(w io.Writer, src OutcomeSource) {
	rule := strings.Repeat("━", ruleWidth)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "                         📊 BENCHMARK RESULTS")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	for _, row := range summaryRows(src) {
		fmt.Fprintln(w, "  "+formatRow(row))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
}

func summaryRows(src OutcomeSource) [][4]string {
	rows := [][4]string{
		{"Metric", "Electron", "Tauri", "Winner"},
		{
			strings.Repeat("─", 12),
			strings.Repeat("─", 18),
			strings.Repeat("─", 18),
			strings.Repeat("─", 10),
		},
	}

	for _, p := range model.Probes {
		if !hasData(src, p) {
			continue
		}
		e := src.Outcome(model.TargetElectron, p)
		t := src.Outcome(model.TargetTauri, p)
		rows = append(rows, [4]string{
			p.Label(),
			FormatOutcome(p, e),
			FormatOutcome(p, t),
			Winner(e, t),
		})
	}

	return rows
}

func formatRow(row [4]string) string {
	cells := make([]string, len(row))
	for i, c := range row {
		cells[i] = padRight(c, columnWidths[i])
	}
	return strings.Join(cells, columnSeparator)
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

package report

// This file contains the Markdown fragment with the latest results and the
// history table.

import (
	"fmt"
	"strings"

	"github.com/shellbench/shellbench/model"
)

const (
	mdMissing   = "—"
	mdNoRatio   = "~"
	mdDate      = "2006-01-02"
	cpuRatioMin = 0.1
)

var mdRowTitles = map[model.Probe]string{
	model.ProbeStartup:       "Startup Time",
	model.ProbeMemory:        "Memory Usage",
	model.ProbeCPULoad:       "CPU (Load)",
	model.ProbeBundleSize:    "Bundle Size",
	model.ProbeInstallerSize: "Installer Size",
}

// Markdown renders the latest record followed by the history, newest first.
func Markdown(latest *model.Record, history []model.Record) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "**Platform:** %s (%s) | **Runs:** %d | **Date:** %s\n\n",
		latest.Platform, latest.Arch, latest.Runs, latest.Timestamp.Format(mdDate))

	sb.WriteString("| Metric | Electron | Tauri | Δ |\n")
	sb.WriteString("|--------|----------|-------|---|\n")

	for _, p := range model.Probes {
		e, eok := latest.Electron.Get(p)
		t, tok := latest.Tauri.Get(p)
		if !eok && !tok {
			continue
		}

		fmt.Fprintf(&sb, "| **%s** | %s | %s | %s |\n",
			mdRowTitles[p], mdCell(p, e, eok), mdCell(p, t, tok), ratio(p, e, eok, t, tok))
	}

	sb.WriteString("\n## 📜 Benchmark History\n\n")
	sb.WriteString("| # | Date | Platform | Startup (E/T) | Memory (E/T) | Bundle (E/T) |\n")
	sb.WriteString("|---|------|----------|---------------|--------------|---------------|\n")

	for i := len(history) - 1; i >= 0; i-- {
		r := &history[i]
		fmt.Fprintf(&sb, "| %d | %s | %s/%s | %s | %s | %s |\n",
			i+1,
			r.Timestamp.Format(mdDate),
			r.Platform, r.Arch,
			pair(r, model.ProbeStartup, func(v float64) string { return fmt.Sprintf("%.0fms", v) }),
			pair(r, model.ProbeMemory, func(v float64) string { return fmt.Sprintf("%.0fMB", v) }),
			pair(r, model.ProbeBundleSize, func(v float64) string { return FormatBytes(uint64(v)) }),
		)
	}

	return sb.String()
}

func mdCell(p model.Probe, s model.Statistics, ok bool) string {
	if !ok {
		return mdMissing
	}
	if p == model.ProbeCPULoad {
		return FormatCPU(s.Mean)
	}
	return FormatStats(p, s)
}

// ratio is the Electron/Tauri factor of the means.
func ratio(p model.Probe, e model.Statistics, eok bool, t model.Statistics, tok bool) string {
	if p == model.ProbeCPULoad {
		if !eok || !tok || t.Mean <= cpuRatioMin {
			return mdNoRatio
		}
		return fmt.Sprintf("%.1fx", e.Mean/t.Mean)
	}

	if !eok || !tok || e.Mean <= 0 || t.Mean <= 0 {
		return mdMissing
	}
	if p.IsSize() {
		return fmt.Sprintf("%.0fx", e.Mean/t.Mean)
	}
	return fmt.Sprintf("%.1fx", e.Mean/t.Mean)
}

func pair(r *model.Record, p model.Probe, format func(float64) string) string {
	side := func(tr *model.TargetResult) string {
		if s, ok := tr.Get(p); ok && s.Mean > 0 {
			return format(s.Mean)
		}
		return mdMissing
	}
	return side(&r.Electron) + " / " + side(&r.Tauri)
}

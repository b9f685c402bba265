// Package report renders benchmark records: the console summary, the
// Markdown fragment injected into the project README and a pprof export of
// the raw samples.
package report

import (
	"fmt"

	"github.com/shellbench/shellbench/model"
)

const (
	notAvailable = "N/A"
	noWinner     = "—"
)

// OutcomeSource yields the outcome of a (target, probe) pair.
type OutcomeSource interface {
	Outcome(id model.TargetID, p model.Probe) model.Outcome
}

// RecordOutcomes adapts a stored record to an OutcomeSource.
type RecordOutcomes struct {
	Record *model.Record
}

func (r RecordOutcomes) Outcome(id model.TargetID, p model.Probe) model.Outcome {
	return model.OutcomeOf(r.Record, id, p)
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(b uint64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case b < kb:
		return fmt.Sprintf("%d B", b)
	case b < mb:
		return fmt.Sprintf("%.1f KB", float64(b)/kb)
	case b < gb:
		return fmt.Sprintf("%.1f MB", float64(b)/mb)
	default:
		return fmt.Sprintf("%.2f GB", float64(b)/gb)
	}
}

// FormatCPU renders a CPU percentage.
func FormatCPU(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatSample renders a single sample of probe p.
func FormatSample(p model.Probe, v float64) string {
	switch p {
	case model.ProbeStartup:
		return fmt.Sprintf("%.0fms", v)
	case model.ProbeMemory:
		return fmt.Sprintf("%.1f MB", v)
	case model.ProbeCPULoad:
		return FormatCPU(v)
	default:
		return FormatBytes(uint64(v))
	}
}

// FormatStats renders aggregated statistics of probe p, with the spread
// where the probe has one.
func FormatStats(p model.Probe, s model.Statistics) string {
	switch p {
	case model.ProbeStartup:
		return fmt.Sprintf("%.0fms ± %.0fms", s.Mean, s.StdDev)
	case model.ProbeCPULoad:
		return FormatCPU(s.Mean) + " ± " + FormatCPU(s.StdDev)
	default:
		return FormatSample(p, s.Mean)
	}
}

// FormatOutcome renders an outcome for a table cell.
func FormatOutcome(p model.Probe, o model.Outcome) string {
	switch o := o.(type) {
	case model.Success:
		return FormatStats(p, o.Stats)
	default:
		return notAvailable
	}
}

// Winner returns the display name of the target with the lower mean, or
// noWinner when the two are not comparable.
func Winner(electron, tauri model.Outcome) string {
	e, eok := model.Mean(electron)
	t, tok := model.Mean(tauri)
	if !eok || !tok {
		return noWinner
	}
	if e < t {
		return model.TargetElectron.DisplayName()
	}
	return model.TargetTauri.DisplayName()
}

func hasData(src OutcomeSource, p model.Probe) bool {
	for _, id := range model.Targets {
		if _, ok := src.Outcome(id, p).(model.Success); ok {
			return true
		}
	}
	return false
}

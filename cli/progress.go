package cli

// This file contains the console progress output of a running session.

import (
	"fmt"
	"io"

	"github.com/shellbench/shellbench/model"
	"github.com/shellbench/shellbench/probe"
	"github.com/shellbench/shellbench/report"
	"github.com/shellbench/shellbench/session"
	"github.com/shellbench/shellbench/target"
)

var sectionTitles = map[model.Probe]string{
	model.ProbeStartup:       "⏱️  Measuring Startup Time...",
	model.ProbeMemory:        "🧠 Measuring Memory Usage...",
	model.ProbeCPULoad:       "🔥 Measuring CPU Under Load...",
	model.ProbeBundleSize:    "📦 Measuring Bundle Size...",
	model.ProbeInstallerSize: "💾 Measuring Installer Size...",
}

// progressPrinter prints one section per probe and one line per attempt.
type progressPrinter struct {
	w       io.Writer
	names   map[model.TargetID]string
	section model.Probe
	started bool
}

func newProgressPrinter(w io.Writer, targets []target.Target) *progressPrinter {
	names := make(map[model.TargetID]string, len(targets))
	for _, t := range targets {
		names[t.ID] = t.Name
	}
	return &progressPrinter{w: w, names: names}
}

func (p *progressPrinter) observe(e session.Event) {
	switch e.Kind {
	case session.EventProbeStarted:
		if !p.started || p.section != e.Probe {
			if p.started {
				fmt.Fprintln(p.w)
			}
			p.started = true
			p.section = e.Probe
			fmt.Fprintf(p.w, "%s\n\n", sectionTitles[e.Probe])
			if e.Probe == model.ProbeCPULoad {
				fmt.Fprintf(p.w, "   (Each measurement takes ~%s)\n\n", cpuAttemptHint)
			}
		}

	case session.EventAttempt:
		name := p.names[e.Target]
		result := "failed"
		if e.Err == nil {
			result = report.FormatSample(e.Probe, e.Value)
		}

		if e.Probe.IsSize() {
			fmt.Fprintf(p.w, "   %-9s %s\n", name+":", result)
			return
		}
		fmt.Fprintf(p.w, "   %s run %d/%d... %s\n", name, e.Run, e.Runs, result)
	}
}

var cpuAttemptHint = func() string {
	pol := probe.DefaultPolicy()
	return (pol.CPUSettle + pol.CPUWindow).String()
}()

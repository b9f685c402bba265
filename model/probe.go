package model

import "strings"

// TargetID identifies one of the two application shells under comparison.
type TargetID string

const (
	TargetElectron TargetID = "electron"
	TargetTauri    TargetID = "tauri"
)

// Targets lists the target ids in report order.
var Targets = []TargetID{TargetElectron, TargetTauri}

// DisplayName returns the name used in console and Markdown output.
func (t TargetID) DisplayName() string {
	switch t {
	case TargetElectron:
		return "Electron"
	case TargetTauri:
		return "Tauri"
	default:
		return string(t)
	}
}

// Probe is a named measurement procedure.
type Probe string

const (
	ProbeStartup       Probe = "startup"
	ProbeMemory        Probe = "memory"
	ProbeCPULoad       Probe = "cpu_load"
	ProbeBundleSize    Probe = "bundle_size"
	ProbeInstallerSize Probe = "installer_size"
)

// Probes lists every probe in the order a session runs them.
var Probes = []Probe{ProbeStartup, ProbeMemory, ProbeCPULoad, ProbeBundleSize, ProbeInstallerSize}

// QuickProbes is the reduced set selected by "quick".
var QuickProbes = []Probe{ProbeStartup, ProbeMemory, ProbeBundleSize}

var probeAliases = map[string]Probe{
	"startup":        ProbeStartup,
	"memory":         ProbeMemory,
	"mem":            ProbeMemory,
	"cpu_load":       ProbeCPULoad,
	"cpu-load":       ProbeCPULoad,
	"cpu":            ProbeCPULoad,
	"bundle_size":    ProbeBundleSize,
	"bundle-size":    ProbeBundleSize,
	"bundle":         ProbeBundleSize,
	"size":           ProbeBundleSize,
	"installer_size": ProbeInstallerSize,
	"installer-size": ProbeInstallerSize,
	"installer":      ProbeInstallerSize,
}

// ParseProbe resolves a probe name or one of its short aliases.
func ParseProbe(s string) (Probe, bool) {
	p, ok := probeAliases[strings.ToLower(strings.TrimSpace(s))]
	return p, ok
}

// Label is the human readable row title.
func (p Probe) Label() string {
	switch p {
	case ProbeStartup:
		return "Startup"
	case ProbeMemory:
		return "Memory"
	case ProbeCPULoad:
		return "CPU (Load)"
	case ProbeBundleSize:
		return "Bundle Size"
	case ProbeInstallerSize:
		return "Installer"
	default:
		return string(p)
	}
}

// Unit is the unit of a single sample of the probe.
func (p Probe) Unit() string {
	switch p {
	case ProbeStartup:
		return "ms"
	case ProbeMemory:
		return "MB"
	case ProbeCPULoad:
		return "%"
	default:
		return "bytes"
	}
}

// IsSize reports whether the probe measures a file size instead of a
// running process. Size probes are measured once per session.
func (p Probe) IsSize() bool {
	return p == ProbeBundleSize || p == ProbeInstallerSize
}

// Selection is an ordered set of probes.
type Selection []Probe

// Has reports whether p is part of the selection.
func (s Selection) Has(p Probe) bool {
	for _, q := range s {
		if q == p {
			return true
		}
	}
	return false
}

// ParseSelection maps a selection name to a probe set. The empty string and
// "all" select every probe, "quick" selects QuickProbes, and a probe name or
// alias selects just that probe. Anything else falls back to every probe with
// recognized set to false.
func ParseSelection(s string) (sel Selection, recognized bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return append(Selection(nil), Probes...), true
	case "quick":
		return append(Selection(nil), QuickProbes...), true
	}
	if p, ok := ParseProbe(s); ok {
		return Selection{p}, true
	}
	return append(Selection(nil), Probes...), false
}

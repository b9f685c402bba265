package model

import "time"

// Statistics summarises the successful samples of one probe against one
// target.
type Statistics struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// TargetResult holds everything measured for one target in a session.
// Fields without data are omitted from the JSON form.
type TargetResult struct {
	// Startup time in milliseconds
	StartupMs *Statistics `json:"startupMs,omitempty"`
	// Resident memory in megabytes after stabilization
	MemoryMB *Statistics `json:"memoryMB,omitempty"`
	// CPU percent while running the stress workload
	CPULoad *Statistics `json:"cpuLoad,omitempty"`
	// Size of the unpacked application bundle
	SizeBytes uint64 `json:"sizeBytes,omitempty"`
	// Size of the distributable installer
	InstallerBytes uint64 `json:"installerBytes,omitempty"`
}

// Record is the output of one benchmark session.
type Record struct {
	// Platform name: windows, macos or linux
	Platform string `json:"platform"`
	// Architecture name: x64 or arm64
	Arch string `json:"arch"`
	// Time the session started
	Timestamp time.Time `json:"timestamp"`
	// Number of runs per sampled probe
	Runs int `json:"runs"`

	Electron TargetResult `json:"electron"`
	Tauri    TargetResult `json:"tauri"`
}

// Target returns the result section for id, or nil for an unknown id.
func (r *Record) Target(id TargetID) *TargetResult {
	switch id {
	case TargetElectron:
		return &r.Electron
	case TargetTauri:
		return &r.Tauri
	default:
		return nil
	}
}

// Set stores stats for probe p. Size probes keep the mean as a byte count.
func (t *TargetResult) Set(p Probe, stats Statistics) {
	s := stats
	switch p {
	case ProbeStartup:
		t.StartupMs = &s
	case ProbeMemory:
		t.MemoryMB = &s
	case ProbeCPULoad:
		t.CPULoad = &s
	case ProbeBundleSize:
		t.SizeBytes = uint64(stats.Mean)
	case ProbeInstallerSize:
		t.InstallerBytes = uint64(stats.Mean)
	}
}

// Get returns the stats stored for probe p. Size probes are reported as a
// single-sample statistic.
func (t *TargetResult) Get(p Probe) (Statistics, bool) {
	switch p {
	case ProbeStartup:
		return deref(t.StartupMs)
	case ProbeMemory:
		return deref(t.MemoryMB)
	case ProbeCPULoad:
		return deref(t.CPULoad)
	case ProbeBundleSize:
		return sizeStats(t.SizeBytes)
	case ProbeInstallerSize:
		return sizeStats(t.InstallerBytes)
	}
	return Statistics{}, false
}

func deref(s *Statistics) (Statistics, bool) {
	if s == nil {
		return Statistics{}, false
	}
	return *s, true
}

func sizeStats(b uint64) (Statistics, bool) {
	if b == 0 {
		return Statistics{}, false
	}
	v := float64(b)
	return Statistics{Mean: v, Min: v, Max: v}, true
}

package report

// This file contains the pprof export of the raw samples of a session. Each
// sample becomes a pprof sample with the stack [probe, target] and the
// labels target, probe and run, so a session can be sliced with
// "go tool pprof -tagfocus" or "-tags".

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/pprof/profile"

	"github.com/shellbench/shellbench/model"
	"github.com/shellbench/shellbench/session"
)

// profileTimeFormat names the profile files; it sorts chronologically.
const profileTimeFormat = "20060102T150405Z"

// sampleType maps a probe to its pprof value type and the factor that turns
// a sample into an integer value of that unit.
func sampleType(p model.Probe) (*profile.ValueType, float64) {
	switch p {
	case model.ProbeStartup:
		return &profile.ValueType{Type: string(p), Unit: "microseconds"}, 1000
	case model.ProbeMemory:
		return &profile.ValueType{Type: string(p), Unit: "kilobytes"}, 1024
	case model.ProbeCPULoad:
		return &profile.ValueType{Type: string(p), Unit: "basis_points"}, 100
	default:
		return &profile.ValueType{Type: string(p), Unit: "bytes"}, 1
	}
}

type profileBuilder struct {
	profile   *profile.Profile
	functions map[string]*profile.Function
	locations map[string]*profile.Location
}

func newProfileBuilder(res *session.Result) *profileBuilder {
	return &profileBuilder{
		profile: &profile.Profile{
			TimeNanos: res.Record.Timestamp.UnixNano(),
			Comments: []string{
				fmt.Sprintf("platform=%s arch=%s runs=%d", res.Record.Platform, res.Record.Arch, res.Record.Runs),
			},
		},
		functions: make(map[string]*profile.Function),
		locations: make(map[string]*profile.Location),
	}
}

func (b *profileBuilder) location(name string) *profile.Location {
	if loc, ok := b.locations[name]; ok {
		return loc
	}

	fn, ok := b.functions[name]
	if !ok {
		fn = &profile.Function{
			ID:         uint64(len(b.profile.Function) + 1),
			Name:       name,
			SystemName: name,
		}
		b.functions[name] = fn
		b.profile.Function = append(b.profile.Function, fn)
	}

	loc := &profile.Location{
		ID:   uint64(len(b.profile.Location) + 1),
		Line: []profile.Line{{Function: fn}},
	}
	b.locations[name] = loc
	b.profile.Location = append(b.profile.Location, loc)
	return loc
}

// BuildProfile converts the successful raw samples of res into a profile
// with one sample type per probe that has data.
func BuildProfile(res *session.Result) *profile.Profile {
	b := newProfileBuilder(res)

	index := make(map[model.Probe]int)
	for _, p := range model.Probes {
		for _, id := range model.Targets {
			if len(res.Samples[session.Cell{Target: id, Probe: p}]) == 0 {
				continue
			}
			if _, ok := index[p]; !ok {
				vt, _ := sampleType(p)
				index[p] = len(b.profile.SampleType)
				b.profile.SampleType = append(b.profile.SampleType, vt)
			}
		}
	}

	for _, p := range model.Probes {
		idx, ok := index[p]
		if !ok {
			continue
		}
		_, scale := sampleType(p)

		for _, id := range model.Targets {
			stack := []*profile.Location{b.location(string(p)), b.location(string(id))}

			for run, v := range res.Samples[session.Cell{Target: id, Probe: p}] {
				values := make([]int64, len(b.profile.SampleType))
				values[idx] = int64(math.Round(v * scale))

				b.profile.Sample = append(b.profile.Sample, &profile.Sample{
					Location: stack,
					Value:    values,
					Label: map[string][]string{
						"target": {string(id)},
						"probe":  {string(p)},
					},
					NumLabel: map[string][]int64{
						"run": {int64(run + 1)},
					},
				})
			}
		}
	}

	if len(b.profile.SampleType) > 0 {
		b.profile.DefaultSampleType = b.profile.SampleType[0].Type
	}

	return b.profile
}

// WriteProfile writes the profile of res into dir and returns its path.
// Nothing is written when the session produced no samples.
func WriteProfile(dir string, res *session.Result) (string, error) {
	prof := BuildProfile(res)
	if len(prof.Sample) == 0 {
		return "", nil
	}
	if err := prof.CheckValid(); err != nil {
		return "", fmt.Errorf("invalid profile: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, res.Record.Timestamp.UTC().Format(profileTimeFormat)+".pb.gz")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create profile: %w", err)
	}
	defer f.Close()

	if err := prof.Write(f); err != nil {
		return "", fmt.Errorf("failed to write profile: %w", err)
	}
	return path, f.Close()
}

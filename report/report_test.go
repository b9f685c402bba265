package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/pprof/profile"
	"github.com/stretchr/testify/require"

	"github.com/shellbench/shellbench/model"
	"github.com/shellbench/shellbench/session"
)

func sampleRecord() *model.Record {
	r := &model.Record{
		Platform:  "linux",
		Arch:      "x64",
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Runs:      5,
	}
	r.Electron.Set(model.ProbeStartup, model.Statistics{Mean: 412.4, StdDev: 12.2, Min: 400, Max: 430})
	r.Tauri.Set(model.ProbeStartup, model.Statistics{Mean: 206.2, StdDev: 3.4, Min: 201, Max: 210})
	r.Electron.Set(model.ProbeMemory, model.Statistics{Mean: 180.26, Min: 170, Max: 190})
	r.Electron.Set(model.ProbeCPULoad, model.Statistics{Mean: 35.25, StdDev: 1.5})
	r.Tauri.Set(model.ProbeCPULoad, model.Statistics{Mean: 0.05})
	r.Electron.Set(model.ProbeBundleSize, model.Statistics{Mean: 250 << 20})
	r.Tauri.Set(model.ProbeBundleSize, model.Statistics{Mean: 10 << 20})
	return r
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{in: 0, want: "0 B"},
		{in: 1023, want: "1023 B"},
		{in: 1536, want: "1.5 KB"},
		{in: 5 << 20, want: "5.0 MB"},
		{in: 3 << 30, want: "3.00 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, FormatBytes(tt.in))
		})
	}
}

func TestFormatStats(t *testing.T) {
	require.Equal(t, "412ms ± 12ms", FormatStats(model.ProbeStartup, model.Statistics{Mean: 412.4, StdDev: 12.2}))
	require.Equal(t, "180.3 MB", FormatStats(model.ProbeMemory, model.Statistics{Mean: 180.26}))
	require.Equal(t, "35.2% ± 1.5%", FormatStats(model.ProbeCPULoad, model.Statistics{Mean: 35.24, StdDev: 1.5}))
	require.Equal(t, "2.0 KB", FormatStats(model.ProbeBundleSize, model.Statistics{Mean: 2048}))
}

func TestWinner(t *testing.T) {
	a := model.Success{Stats: model.Statistics{Mean: 1}}
	b := model.Success{Stats: model.Statistics{Mean: 2}}

	require.Equal(t, "Electron", Winner(a, b))
	require.Equal(t, "Tauri", Winner(b, a))
	require.Equal(t, "Tauri", Winner(a, a))
	require.Equal(t, "—", Winner(a, model.Skipped{Attempts: 5, Failures: 5}))
	require.Equal(t, "—", Winner(model.Unsupported{}, b))
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, RecordOutcomes{Record: sampleRecord()})
	out := buf.String()

	lines := strings.Split(out, "\n")
	var rows []string
	for _, l := range lines {
		if strings.HasPrefix(l, "  ") && strings.Contains(l, "│ ") {
			rows = append(rows, l)
		}
	}

	require.Equal(t, []string{
		"  Metric        │ Electron            │ Tauri               │ Winner      ",
		"  ────────────  │ ──────────────────  │ ──────────────────  │ ──────────  ",
		"  Startup       │ 412ms ± 12ms        │ 206ms ± 3ms         │ Tauri       ",
		"  Memory        │ 180.3 MB            │ N/A                 │ —           ",
		"  CPU (Load)    │ 35.2% ± 1.5%        │ 0.1% ± 0.0%         │ Tauri       ",
		"  Bundle Size   │ 250.0 MB            │ 10.0 MB             │ Tauri       ",
	}, rows)
	require.NotContains(t, out, "Installer")
}

func TestMarkdown(t *testing.T) {
	latest := sampleRecord()
	older := model.Record{
		Platform:  "windows",
		Arch:      "x64",
		Timestamp: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		Runs:      3,
	}
	older.Tauri.Set(model.ProbeMemory, model.Statistics{Mean: 45.6})

	md := Markdown(latest, []model.Record{older, *latest})

	require.Equal(t, `**Platform:** linux (x64) | **Runs:** 5 | **Date:** 2026-03-14

| Metric | Electron | Tauri | Δ |
|--------|----------|-------|---|
| **Startup Time** | 412ms ± 12ms | 206ms ± 3ms | 2.0x |
| **Memory Usage** | 180.3 MB | — | — |
| **CPU (Load)** | 35.2% | 0.1% | ~ |
| **Bundle Size** | 250.0 MB | 10.0 MB | 25x |

## 📜 Benchmark History

| # | Date | Platform | Startup (E/T) | Memory (E/T) | Bundle (E/T) |
|---|------|----------|---------------|--------------|---------------|
| 2 | 2026-03-14 | linux/x64 | 412ms / 206ms | 180MB / — | 250.0 MB / 10.0 MB |
| 1 | 2026-01-02 | windows/x64 | — / — | — / 46MB | — / — |
`, md)
}

func TestInject(t *testing.T) {
	doc := "# App\n\nintro\n\n" + StartMarker + "\nold results\n" + EndMarker + "\n\nfooter\n"

	out, err := Inject(doc, "new results\n")
	require.NoError(t, err)
	require.Equal(t, "# App\n\nintro\n\n"+StartMarker+"\nnew results\n"+EndMarker+"\n\nfooter\n", out)

	again, err := Inject(out, "new results\n")
	require.NoError(t, err)
	require.Equal(t, out, again)
}

func TestInjectMissingMarkers(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "no markers", doc: "# App\n"},
		{name: "only start", doc: StartMarker + "\n"},
		{name: "only end", doc: EndMarker + "\n"},
		{name: "end before start", doc: EndMarker + "\n" + StartMarker + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Inject(tt.doc, "fragment")
			require.True(t, errors.Is(err, ErrMarkersNotFound))
			require.Equal(t, tt.doc, out)
		})
	}
}

func TestInjectFile(t *testing.T) {
	dir := t.TempDir()

	ok, err := InjectFile(filepath.Join(dir, "README.md"), "x")
	require.NoError(t, err)
	require.False(t, ok)

	path := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(path, []byte(StartMarker+EndMarker), 0o644))

	ok, err = InjectFile(path, "table\n")
	require.NoError(t, err)
	require.True(t, ok)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, StartMarker+"\ntable\n"+EndMarker, string(data))

	require.NoError(t, os.WriteFile(path, []byte("no markers"), 0o644))
	_, err = InjectFile(path, "table\n")
	require.True(t, errors.Is(err, ErrMarkersNotFound))
}

func sessionResult() *session.Result {
	return &session.Result{
		Record: model.Record{
			Platform:  "macos",
			Arch:      "arm64",
			Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
			Runs:      2,
		},
		Samples: map[session.Cell][]float64{
			{Target: model.TargetElectron, Probe: model.ProbeStartup}: {400.5, 420},
			{Target: model.TargetTauri, Probe: model.ProbeStartup}:    {200},
			{Target: model.TargetTauri, Probe: model.ProbeMemory}:     {48.25, 50},
			{Target: model.TargetElectron, Probe: model.ProbeCPULoad}: {12.34},
			{Target: model.TargetTauri, Probe: model.ProbeBundleSize}: {1 << 20},
		},
	}
}

func TestBuildProfile(t *testing.T) {
	prof := BuildProfile(sessionResult())
	require.NoError(t, prof.CheckValid())

	var types []string
	for _, st := range prof.SampleType {
		types = append(types, st.Type+"/"+st.Unit)
	}
	require.Equal(t, []string{
		"startup/microseconds",
		"memory/kilobytes",
		"cpu_load/basis_points",
		"bundle_size/bytes",
	}, types)
	require.Len(t, prof.Sample, 7)

	first := prof.Sample[0]
	require.Equal(t, []int64{400500, 0, 0, 0}, first.Value)
	require.Equal(t, []string{"electron"}, first.Label["target"])
	require.Equal(t, []string{"startup"}, first.Label["probe"])
	require.Equal(t, []int64{1}, first.NumLabel["run"])
	require.Equal(t, "startup", first.Location[0].Line[0].Function.Name)
	require.Equal(t, "electron", first.Location[1].Line[0].Function.Name)

	var memory []int64
	for _, s := range prof.Sample {
		if s.Label["probe"][0] == "memory" {
			memory = append(memory, s.Value[1])
		}
	}
	require.Equal(t, []int64{49408, 51200}, memory)
}

func TestWriteProfile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profiles")

	path, err := WriteProfile(dir, sessionResult())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20260314T092653Z.pb.gz"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	prof, err := profile.Parse(f)
	require.NoError(t, err)
	require.Len(t, prof.Sample, 7)

	path, err = WriteProfile(dir, &session.Result{})
	require.NoError(t, err)
	require.Empty(t, path)
}

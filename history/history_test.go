package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/shellbench/shellbench/model"
)

func record(day int, startup float64) model.Record {
	r := model.Record{
		Platform:  "linux",
		Arch:      "x64",
		Timestamp: time.Date(2026, 2, day, 10, 0, 0, 0, time.UTC),
		Runs:      5,
	}
	r.Electron.Set(model.ProbeStartup, model.Statistics{Mean: startup, StdDev: 2, Min: startup - 2, Max: startup + 2})
	r.Tauri.Set(model.ProbeBundleSize, model.Statistics{Mean: 8 << 20})
	return r
}

func TestLoadMissing(t *testing.T) {
	s := &Store{Path: filepath.Join(t.TempDir(), "results", "benchmark-history.json")}

	records, err := s.Load()
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestAppendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "benchmark-history.json")
	s := &Store{Path: path, Logger: zerolog.Nop()}

	const n = 4
	for i := 1; i <= n; i++ {
		records, err := s.Append(record(i, float64(100*i)))
		require.NoError(t, err)
		require.Len(t, records, i)
	}

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded, n)
	for i, got := range loaded {
		want := record(i+1, float64(100*(i+1)))
		want.Timestamp = want.Timestamp.UTC()
		got.Timestamp = got.Timestamp.UTC()
		require.Equal(t, want, got, "record %d", i)
	}

	// No temp files are left next to the history.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchmark-history.json")
	s := &Store{Path: path}

	r := model.Record{Platform: "macos", Arch: "arm64", Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Runs: 1}
	r.Tauri.Set(model.ProbeMemory, model.Statistics{Mean: 40, Min: 40, Max: 40})
	_, err := s.Append(r)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"benchmarks": [{
		"platform": "macos",
		"arch": "arm64",
		"timestamp": "2026-01-01T00:00:00Z",
		"runs": 1,
		"electron": {},
		"tauri": {"memoryMB": {"mean": 40, "stdDev": 0, "min": 40, "max": 40}}
	}]}`, string(data))
	require.Contains(t, string(data), "\n  \"benchmarks\": [\n")
}

func TestLoadReadsForeignRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchmark-history.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "benchmarks": [
    {
      "platform": "windows",
      "arch": "x64",
      "timestamp": "2025-12-24T18:30:12.345Z",
      "runs": 5,
      "electron": {"startupMs": {"mean": 512.4, "stdDev": 20.1, "min": 490, "max": 540}, "sizeBytes": 250000000},
      "tauri": {"installerBytes": 3000000}
    }
  ]
}`), 0o644))

	records, err := (&Store{Path: path}).Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "windows", records[0].Platform)
	require.Equal(t, 512.4, records[0].Electron.StartupMs.Mean)
	require.Equal(t, uint64(250000000), records[0].Electron.SizeBytes)
	require.Equal(t, uint64(3000000), records[0].Tauri.InstallerBytes)
}

func TestCorruptHistoryIsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{{{"},
		{name: "truncated", content: `{"benchmarks": [{"platform": "linux"`},
		{name: "benchmarks not an array", content: `{"benchmarks": 42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "benchmark-history.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			s := &Store{Path: path, Logger: zerolog.Nop()}

			records, err := s.Load()
			require.NoError(t, err)
			require.Empty(t, records)

			records, err = s.Append(record(1, 50))
			require.NoError(t, err)
			require.Len(t, records, 1)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	require.Equal(t, filepath.Join("/repo", "results", "benchmark-history.json"), DefaultPath("/repo"))
}

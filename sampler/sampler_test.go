package sampler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shellbench/shellbench/clock"
)

type call struct {
	name string
	args []string
}

// scriptedExec answers utility invocations from a queue of outputs.
type scriptedExec struct {
	calls   []call
	outputs []string
	errs    []error
}

func (s *scriptedExec) exec(_ context.Context, name string, args ...string) ([]byte, error) {
	i := len(s.calls)
	s.calls = append(s.calls, call{name: name, args: args})
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i >= len(s.outputs) {
		return nil, errors.New("exit status 1")
	}
	return []byte(s.outputs[i]), nil
}

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNewSelectsImplementation(t *testing.T) {
	require.IsType(t, &Windows{}, New("windows"))
	require.IsType(t, &PS{}, New("linux"))
	require.IsType(t, &PS{}, New("darwin"))
	require.IsType(t, &PS{}, New("freebsd"))
}

func TestPSMemory(t *testing.T) {
	s := &scriptedExec{outputs: []string{"  204800\n"}}
	insp := New("linux", WithExec(s.exec))

	mb, err := insp.Memory(context.Background(), 4242)
	require.NoError(t, err)
	require.Equal(t, 200.0, mb)
	require.Equal(t, []call{{name: "ps", args: []string{"-o", "rss=", "-p", "4242"}}}, s.calls)
}

func TestPSMemoryFailures(t *testing.T) {
	tests := []struct {
		name   string
		output string
		err    error
	}{
		{name: "process exited", err: errors.New("exit status 1")},
		{name: "empty output", output: "\n"},
		{name: "garbage", output: "rss\n"},
		{name: "zero rss", output: "0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &scriptedExec{outputs: []string{tt.output}, errs: []error{tt.err}}
			_, err := New("linux", WithExec(s.exec)).Memory(context.Background(), 1)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrNoReading))
		})
	}
}

func TestPSCPUWindow(t *testing.T) {
	s := &scriptedExec{outputs: []string{"10.0", "20.0", "30,0", "40.0", "50.0"}}
	c := clock.NewFake(epoch)
	insp := New("darwin", WithExec(s.exec), WithClock(c))

	pct, err := insp.CPUWindow(context.Background(), 7, 4*time.Second)
	require.NoError(t, err)
	require.InDelta(t, 30.0, pct, 1e-9)
	require.Len(t, s.calls, 5)
	for _, c := range s.calls {
		require.Equal(t, []string{"-o", "%cpu=", "-p", "7"}, c.args)
	}

	// Five readings spread over the window: four gaps of a second each.
	require.Equal(t, []time.Duration{time.Second, time.Second, time.Second, time.Second}, c.Waits())
}

func TestPSCPUWindowDropsFailedReadings(t *testing.T) {
	s := &scriptedExec{
		outputs: []string{"10", "", "x", "30", ""},
		errs:    []error{nil, errors.New("exit status 1")},
	}
	insp := New("linux", WithExec(s.exec), WithClock(clock.NewFake(epoch)))

	pct, err := insp.CPUWindow(context.Background(), 7, 5*time.Second)
	require.NoError(t, err)
	require.Equal(t, 20.0, pct)
}

func TestPSCPUWindowNoReadings(t *testing.T) {
	s := &scriptedExec{}
	insp := New("linux", WithExec(s.exec), WithClock(clock.NewFake(epoch)))

	_, err := insp.CPUWindow(context.Background(), 7, 5*time.Second)
	require.True(t, errors.Is(err, ErrNoReading))
}

func TestWindowsMemory(t *testing.T) {
	tests := []struct {
		name   string
		output string
		wantMB float64
	}{
		{
			name:   "comma grouping",
			output: `"ElectronBench.exe","9120","Console","1","102,400 K"` + "\r\n",
			wantMB: 100,
		},
		{
			name:   "dot grouping",
			output: `"tauri-bench-app.exe","5512","Console","1","51.200 K"` + "\r\n",
			wantMB: 50,
		},
		{
			name:   "no grouping",
			output: `"app.exe","1","Console","1","1024 K"`,
			wantMB: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &scriptedExec{outputs: []string{tt.output}}
			mb, err := New("windows", WithExec(s.exec)).Memory(context.Background(), 9120)
			require.NoError(t, err)
			require.Equal(t, tt.wantMB, mb)
			require.Equal(t, "tasklist", s.calls[0].name)
			require.Equal(t, []string{"/FI", "PID eq 9120", "/FO", "CSV", "/NH"}, s.calls[0].args)
		})
	}
}

func TestWindowsMemoryNoMatch(t *testing.T) {
	s := &scriptedExec{outputs: []string{"INFO: No tasks are running which match the specified criteria.\r\n"}}
	_, err := New("windows", WithExec(s.exec)).Memory(context.Background(), 1)
	require.True(t, errors.Is(err, ErrNoReading))
}

func TestWindowsCPUWindow(t *testing.T) {
	s := &scriptedExec{outputs: []string{"12.5\r\n", "15\r\n"}}
	c := clock.NewFake(epoch)
	insp := New("windows", WithExec(s.exec), WithClock(c))

	pct, err := insp.CPUWindow(context.Background(), 9, 5*time.Second)
	require.NoError(t, err)
	require.InDelta(t, 50.0, pct, 1e-9)
	require.Equal(t, "powershell", s.calls[0].name)
	require.True(t, strings.Contains(s.calls[0].args[2], "Get-Process -Id 9"))
	require.Equal(t, []time.Duration{5 * time.Second}, c.Waits())
}

func TestWindowsCPUWindowProcessGone(t *testing.T) {
	s := &scriptedExec{outputs: []string{"12.5", ""}}
	insp := New("windows", WithExec(s.exec), WithClock(clock.NewFake(epoch)))

	_, err := insp.CPUWindow(context.Background(), 9, 5*time.Second)
	require.True(t, errors.Is(err, ErrNoReading))
}

func TestCPUPercentFromCumulative(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		wall       time.Duration
		want       float64
	}{
		{name: "half a core", start: 1, end: 3.5, wall: 5 * time.Second, want: 50},
		{name: "multi core clamps to 100", start: 0, end: 20, wall: 5 * time.Second, want: 100},
		{name: "counter reset clamps to 0", start: 20, end: 1, wall: 5 * time.Second, want: 0},
		{name: "idle", start: 4, end: 4, wall: 5 * time.Second, want: 0},
		{name: "zero wall", start: 0, end: 1, wall: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CPUPercentFromCumulative(tt.start, tt.end, tt.wall)
			require.InDelta(t, tt.want, got, 1e-9)
			require.GreaterOrEqual(t, got, 0.0)
			require.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestCommandLine(t *testing.T) {
	require.Equal(t, "tasklist /FI 'PID eq 3' /FO CSV /NH", CommandLine("tasklist", TasklistArgs(3)...))
	require.Equal(t, "ps -o rss= -p 3", CommandLine("ps", MemoryArgs(3)...))
}

package sampler

// windows.go reads process statistics with tasklist and PowerShell. Windows
// only exposes cumulative CPU seconds, so CPU utilization is derived from the
// difference between two readings.

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shellbench/shellbench/clock"
)

// Windows inspects processes with tasklist and PowerShell.
type Windows struct {
	base
}

// tasklist prints the working set as e.g. "123,456 K"; the group separator
// depends on the locale.
var tasklistMemRe = regexp.MustCompile(`"([\d,.\s\x{00a0}]+) K"`)

// TasklistArgs returns the tasklist arguments that print pid as one CSV row.
func TasklistArgs(pid int) []string {
	return []string{"/FI", fmt.Sprintf("PID eq %d", pid), "/FO", "CSV", "/NH"}
}

// CPUTimeArgs returns the PowerShell arguments that print the cumulative CPU
// seconds used by pid.
func CPUTimeArgs(pid int) []string {
	return []string{
		"-NoProfile",
		"-Command",
		fmt.Sprintf("(Get-Process -Id %d -ErrorAction SilentlyContinue).CPU", pid),
	}
}

func (w *Windows) Memory(ctx context.Context, pid int) (float64, error) {
	out, err := w.run(ctx, "tasklist", TasklistArgs(pid)...)
	if err != nil {
		return 0, err
	}

	kb, err := parseTasklistMemory(out)
	if err != nil {
		return 0, fmt.Errorf("pid %d: %w", pid, err)
	}
	return kibToMiB(kb), nil
}

func parseTasklistMemory(out []byte) (float64, error) {
	m := tasklistMemRe.FindSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("no memory column in tasklist output: %w", ErrNoReading)
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, string(m[1]))

	v, err := parseNumber([]byte(digits))
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("zero working set: %w", ErrNoReading)
	}
	return v, nil
}

func (w *Windows) cpuSeconds(ctx context.Context, pid int) (float64, error) {
	out, err := w.run(ctx, "powershell", CPUTimeArgs(pid)...)
	if err != nil {
		return 0, err
	}
	return parseNumber(out)
}

// CPUWindow reads cumulative CPU time at the start and end of the window.
func (w *Windows) CPUWindow(ctx context.Context, pid int, d time.Duration) (float64, error) {
	start, err := w.cpuSeconds(ctx, pid)
	if err != nil {
		return 0, err
	}
	t0 := w.clock.Now()

	if err := clock.Sleep(ctx, w.clock, d); err != nil {
		return 0, err
	}

	end, err := w.cpuSeconds(ctx, pid)
	if err != nil {
		return 0, err
	}
	wall := w.clock.Now().Sub(t0)

	pct := CPUPercentFromCumulative(start, end, wall)

	w.logger.Debug().
		Int("pid", pid).
		Float64("cpu_start_s", start).
		Float64("cpu_end_s", end).
		Dur("wall", wall).
		Float64("percent", pct).
		Msg("CPU window sampled")

	return pct, nil
}

// CPUPercentFromCumulative converts two cumulative CPU-second readings taken
// wall apart into a percentage clamped to [0, 100].
func CPUPercentFromCumulative(startSeconds, endSeconds float64, wall time.Duration) float64 {
	if wall <= 0 {
		return 0
	}

	pct := (endSeconds - startSeconds) / wall.Seconds() * 100
	if math.IsNaN(pct) {
		return 0
	}
	return math.Max(0, math.Min(100, pct))
}

package sampler

// ps.go reads process statistics with ps(1) on Linux, macOS and the BSDs.

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shellbench/shellbench/clock"
)

// PS inspects processes with ps.
type PS struct {
	base
}

// MemoryArgs returns the ps arguments that print the RSS of pid in KiB.
func MemoryArgs(pid int) []string {
	return []string{"-o", "rss=", "-p", strconv.Itoa(pid)}
}

// CPUArgs returns the ps arguments that print the CPU percent of pid.
func CPUArgs(pid int) []string {
	return []string{"-o", "%cpu=", "-p", strconv.Itoa(pid)}
}

func (p *PS) Memory(ctx context.Context, pid int) (float64, error) {
	out, err := p.run(ctx, "ps", MemoryArgs(pid)...)
	if err != nil {
		return 0, err
	}

	kb, err := parseNumber(out)
	if err != nil {
		return 0, err
	}
	if kb <= 0 {
		return 0, fmt.Errorf("rss %v for pid %d: %w", kb, pid, ErrNoReading)
	}
	return kibToMiB(kb), nil
}

// CPUWindow takes evenly spaced %cpu readings, the first at the start of the
// window and the last at its end, and returns their mean. Readings that fail
// are dropped; the window fails only when none succeeded.
func (p *PS) CPUWindow(ctx context.Context, pid int, d time.Duration) (float64, error) {
	n := p.cpuSamples
	var interval time.Duration
	if n > 1 {
		interval = d / time.Duration(n-1)
	}

	var sum float64
	var got int
	for i := 0; i < n; i++ {
		if out, err := p.run(ctx, "ps", CPUArgs(pid)...); err == nil {
			if v, err := parseNumber(out); err == nil {
				sum += v
				got++
			}
		}

		if i < n-1 {
			if err := clock.Sleep(ctx, p.clock, interval); err != nil {
				return 0, err
			}
		}
	}

	if got == 0 {
		return 0, fmt.Errorf("cpu window for pid %d: %w", pid, ErrNoReading)
	}

	p.logger.Debug().
		Int("pid", pid).
		Int("readings", got).
		Dur("window", d).
		Msg("CPU window sampled")

	return sum / float64(got), nil
}

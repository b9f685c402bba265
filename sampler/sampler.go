// Package sampler reads the memory and CPU usage of a running process
// through the operating system's own process utilities.
package sampler

// sampler.go contains the ProcessInspector capability, its options and the
// helpers shared by the platform implementations.

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/rs/zerolog"

	"github.com/shellbench/shellbench/clock"
)

// ErrNoReading is returned when a utility produced no usable value, usually
// because the process already exited.
var ErrNoReading = errors.New("no reading")

// ProcessInspector samples a running process. Implementations never panic;
// a failed reading is returned as an error wrapping ErrNoReading.
type ProcessInspector interface {
	// Memory returns the resident set size of pid in megabytes.
	Memory(ctx context.Context, pid int) (float64, error)
	// CPUWindow returns the CPU utilization of pid in percent, averaged
	// over a window of duration d.
	CPUWindow(ctx context.Context, pid int, d time.Duration) (float64, error)
}

// Exec runs a utility and returns its standard output.
type Exec func(ctx context.Context, name string, args ...string) ([]byte, error)

// DefaultCPUSamples is the number of readings the ps inspector spreads
// across a CPU window.
const DefaultCPUSamples = 5

type base struct {
	logger     zerolog.Logger
	exec       Exec
	clock      clock.Clock
	cpuSamples int
}

// Option configures an inspector.
type Option func(*base)

// WithExec replaces the function used to run utilities.
func WithExec(e Exec) Option {
	return func(b *base) {
		b.exec = e
	}
}

// WithClock replaces the clock used between readings.
func WithClock(c clock.Clock) Option {
	return func(b *base) {
		b.clock = c
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(b *base) {
		b.logger = l
	}
}

// WithCPUSamples sets how many readings the ps inspector takes per window.
func WithCPUSamples(n int) Option {
	return func(b *base) {
		if n > 0 {
			b.cpuSamples = n
		}
	}
}

// New returns the inspector for goos. Windows uses tasklist and PowerShell,
// every other OS uses ps.
func New(goos string, opts ...Option) ProcessInspector {
	b := base{
		logger:     zerolog.Nop(),
		exec:       runUtility,
		clock:      clock.Real(),
		cpuSamples: DefaultCPUSamples,
	}
	for _, opt := range opts {
		opt(&b)
	}

	if goos == "windows" {
		return &Windows{base: b}
	}
	return &PS{base: b}
}

func runUtility(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func (b *base) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	b.logger.Debug().Str("command", CommandLine(name, args...)).Msg("Sampling process")

	out, err := b.exec(ctx, name, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", name, ErrNoReading, err)
	}
	return out, nil
}

// CommandLine renders a utility invocation with shell quoting, for logs.
func CommandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, shellescape.Quote(name))

	for _, arg := range args {
		parts = append(parts, shellescape.Quote(arg))
	}

	return strings.Join(parts, " ")
}

// parseNumber reads a single number from utility output. A decimal comma is
// accepted since ps and PowerShell follow the user's locale.
func parseNumber(out []byte) (float64, error) {
	s := strings.TrimSpace(string(out))
	if s == "" {
		return 0, fmt.Errorf("empty output: %w", ErrNoReading)
	}
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, ErrNoReading)
	}
	return v, nil
}

// kibToMiB converts the kilobyte figures both utilities report.
func kibToMiB(kb float64) float64 {
	return kb / 1024
}

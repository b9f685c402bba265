// Package probe performs single measurement attempts against a target
// application: it launches the executable, takes one sample and makes sure
// the process is gone afterwards.
package probe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/shellbench/shellbench/clock"
	"github.com/shellbench/shellbench/model"
	"github.com/shellbench/shellbench/sampler"
	"github.com/shellbench/shellbench/target"
)

var (
	// ErrTimeout is returned when the startup marker did not arrive in time.
	ErrTimeout = errors.New("probe timed out")
	// ErrNoMarker is returned when the process exited without reporting
	// its startup time.
	ErrNoMarker = errors.New("process exited without startup marker")
	// ErrExited is returned when the process died while being sampled.
	ErrExited = errors.New("process exited during measurement")
	// ErrUnavailable is returned for targets without a discovered executable.
	ErrUnavailable = errors.New("target executable not found")
)

const (
	// BenchFlag asks the application to report its startup time and exit.
	BenchFlag = "--bench"
	// StressFlag asks the application to run its CPU workload.
	StressFlag = "--stress"
)

var markerRe = regexp.MustCompile(`BENCH_STARTUP_MS:([\d.]+)`)

// ParseMarker extracts the startup time in milliseconds from a stderr line.
func ParseMarker(line string) (float64, bool) {
	m := markerRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Policy holds the timing of the probes.
type Policy struct {
	// Hard limit for the startup marker to arrive
	StartupTimeout time.Duration
	// Time a bench-mode process gets to exit by itself after the marker
	ExitGrace time.Duration
	// Stabilization delay before the memory reading
	MemoryDelay time.Duration
	// Stabilization delay before the CPU window
	CPUSettle time.Duration
	// Length of the CPU window
	CPUWindow time.Duration
	// Limit for a fresh process to become visible to the inspector
	AppearTimeout time.Duration
	// Poll interval while waiting for the process to become visible
	PollInterval time.Duration
}

// DefaultPolicy returns the timings used by the benchmark.
func DefaultPolicy() Policy {
	return Policy{
		StartupTimeout: 30 * time.Second,
		ExitGrace:      2 * time.Second,
		MemoryDelay:    2 * time.Second,
		CPUSettle:      2 * time.Second,
		CPUWindow:      5 * time.Second,
		AppearTimeout:  10 * time.Second,
		PollInterval:   200 * time.Millisecond,
	}
}

// CommandFunc builds the command that launches exe.
type CommandFunc func(exe string, args ...string) *exec.Cmd

// Runner runs probes against targets.
type Runner struct {
	logger    zerolog.Logger
	inspector sampler.ProcessInspector
	clock     clock.Clock
	policy    Policy
	command   CommandFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithClock replaces the clock used for every delay and timeout.
func WithClock(c clock.Clock) Option {
	return func(r *Runner) {
		r.clock = c
	}
}

// WithPolicy replaces DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(r *Runner) {
		r.policy = p
	}
}

// WithCommand replaces the function that builds launch commands.
func WithCommand(f CommandFunc) Option {
	return func(r *Runner) {
		r.command = f
	}
}

// New returns a Runner sampling processes through inspector.
func New(inspector sampler.ProcessInspector, opts ...Option) *Runner {
	r := &Runner{
		logger:    zerolog.Nop(),
		inspector: inspector,
		clock:     clock.Real(),
		policy:    DefaultPolicy(),
		command:   exec.Command,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the timings in use.
func (r *Runner) Policy() Policy {
	return r.policy
}

// Run performs one attempt of probe p against t and returns the sample in
// the probe's unit. Failures are returned as errors; no child process
// outlives the call.
func (r *Runner) Run(ctx context.Context, p model.Probe, t target.Target) (float64, error) {
	switch p {
	case model.ProbeBundleSize:
		size, err := target.BundleSize(t)
		return float64(size), err
	case model.ProbeInstallerSize:
		size, err := target.InstallerSize(t)
		return float64(size), err
	}

	if !t.Available() {
		return 0, fmt.Errorf("%s: %w", t.Name, ErrUnavailable)
	}

	switch p {
	case model.ProbeStartup:
		return r.startup(ctx, t)
	case model.ProbeMemory:
		return r.memory(ctx, t)
	case model.ProbeCPULoad:
		return r.cpuLoad(ctx, t)
	}
	return 0, fmt.Errorf("unknown probe %q", p)
}

func (r *Runner) newCommand(t target.Target, args ...string) *exec.Cmd {
	r.logger.Debug().
		Str("target", string(t.ID)).
		Str("command", sampler.CommandLine(t.Exe, args...)).
		Msg("Launching target")

	return r.command(t.Exe, args...)
}

// maxStderrLine bounds a single stderr line. Chromium can log very long
// lines before the marker.
const maxStderrLine = 4 << 20

// startup launches the target in bench mode and waits for the marker line.
func (r *Runner) startup(ctx context.Context, t target.Target) (float64, error) {
	cmd := r.newCommand(t, BenchFlag)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 0, fmt.Errorf("failed to open stderr of %s: %w", t.Name, err)
	}

	markers := make(chan float64, 1)
	drained := make(chan struct{})

	proc, err := start(cmd, drained)
	if err != nil {
		return 0, err
	}

	// The scanner keeps draining after the marker so the child never
	// blocks on a full pipe.
	go func() {
		defer close(drained)
		found := false
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), maxStderrLine)
		for scanner.Scan() {
			if found {
				continue
			}
			if v, ok := ParseMarker(scanner.Text()); ok {
				markers <- v
				found = true
			}
		}
		if err := scanner.Err(); err != nil {
			r.logger.Debug().Err(err).Str("target", string(t.ID)).Msg("Stopped scanning stderr")
			_, _ = io.Copy(io.Discard, stderr)
		}
	}()

	timeout := r.clock.After(r.policy.StartupTimeout)

	select {
	case v := <-markers:
		select {
		case <-proc.Done():
		case <-r.clock.After(r.policy.ExitGrace):
			r.logger.Debug().Str("target", string(t.ID)).Msg("Target did not exit after reporting startup")
		case <-ctx.Done():
		}
		r.stop(proc)
		return v, nil

	case <-proc.Done():
		r.stop(proc)
		select {
		case v := <-markers:
			return v, nil
		default:
		}
		return 0, fmt.Errorf("%s (%v): %w", t.Name, proc.Err(), ErrNoMarker)

	case <-timeout:
		r.stop(proc)
		return 0, fmt.Errorf("%s startup after %s: %w", t.Name, r.policy.StartupTimeout, ErrTimeout)

	case <-ctx.Done():
		r.stop(proc)
		return 0, ctx.Err()
	}
}

func (r *Runner) memory(ctx context.Context, t target.Target) (float64, error) {
	proc, err := start(r.newCommand(t), nil)
	if err != nil {
		return 0, err
	}
	defer r.stop(proc)

	if err := r.settle(ctx, t, proc, r.policy.MemoryDelay); err != nil {
		return 0, err
	}

	return r.inspector.Memory(ctx, proc.Pid())
}

func (r *Runner) cpuLoad(ctx context.Context, t target.Target) (float64, error) {
	proc, err := start(r.newCommand(t, StressFlag), nil)
	if err != nil {
		return 0, err
	}
	defer r.stop(proc)

	if err := r.settle(ctx, t, proc, r.policy.CPUSettle); err != nil {
		return 0, err
	}

	pct, err := r.inspector.CPUWindow(ctx, proc.Pid(), r.policy.CPUWindow)
	if err != nil {
		return 0, err
	}
	if proc.Exited() {
		return 0, fmt.Errorf("%s during CPU window: %w", t.Name, ErrExited)
	}
	return pct, nil
}

// settle waits until the process is visible to the inspector and then for
// the stabilization delay.
func (r *Runner) settle(ctx context.Context, t target.Target, proc *process, delay time.Duration) error {
	err := clock.WaitFor(ctx, r.clock, r.policy.AppearTimeout, r.policy.PollInterval, func() bool {
		if proc.Exited() {
			return true
		}
		_, err := r.inspector.Memory(ctx, proc.Pid())
		return err == nil
	})
	if err != nil {
		return fmt.Errorf("waiting for %s to appear: %w", t.Name, err)
	}
	if proc.Exited() {
		return fmt.Errorf("%s (%v): %w", t.Name, proc.Err(), ErrExited)
	}

	if err := clock.Sleep(ctx, r.clock, delay); err != nil {
		return err
	}
	if proc.Exited() {
		return fmt.Errorf("%s (%v): %w", t.Name, proc.Err(), ErrExited)
	}
	return nil
}

func (r *Runner) stop(proc *process) {
	if err := proc.Kill(r.clock, r.policy.ExitGrace); err != nil {
		r.logger.Warn().Err(err).Int("pid", proc.Pid()).Msg("Failed to stop target process")
	}
}

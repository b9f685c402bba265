// Package session orchestrates a benchmark: every selected probe against
// every available target, a fixed number of sequential runs each, reduced
// into a Record.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shellbench/shellbench/model"
	"github.com/shellbench/shellbench/stats"
	"github.com/shellbench/shellbench/target"
)

// DefaultRuns is the number of attempts per sampled probe.
const DefaultRuns = 5

// ErrNoTargets is returned when neither application build was found.
var ErrNoTargets = errors.New("no benchmark targets found, build the apps first")

var errEmptyArtifact = errors.New("artifact has zero size")

// ProbeRunner performs a single probe attempt.
type ProbeRunner interface {
	Run(ctx context.Context, p model.Probe, t target.Target) (float64, error)
}

// Config describes a session.
type Config struct {
	Targets   []target.Target
	Selection model.Selection
	// Attempts per sampled probe; size probes always run once
	Runs     int
	Runner   ProbeRunner
	Observer Observer
	Logger   zerolog.Logger
	// Platform and Arch as stored in the record
	Platform string
	Arch     string
	// Now stamps the record, the current UTC time when nil
	Now func() time.Time
}

// Cell addresses one (target, probe) pair.
type Cell struct {
	Target model.TargetID
	Probe  model.Probe
}

// Result is the output of a session.
type Result struct {
	Record   model.Record
	Outcomes map[Cell]model.Outcome
	// Samples holds the successful raw samples in run order
	Samples map[Cell][]float64
	// Failures counts failed attempts over the whole session
	Failures int
}

// Outcome returns the outcome of target id for probe p. Probes that were not
// selected report Skipped with zero attempts.
func (r *Result) Outcome(id model.TargetID, p model.Probe) model.Outcome {
	if o, ok := r.Outcomes[Cell{Target: id, Probe: p}]; ok {
		return o
	}
	return model.Skipped{}
}

// Session runs the configured benchmark.
type Session struct {
	cfg Config
}

// New returns a Session. Zero values in cfg fall back to the defaults.
func New(cfg Config) *Session {
	if cfg.Runs < 1 {
		cfg.Runs = DefaultRuns
	}
	if len(cfg.Selection) == 0 {
		cfg.Selection = append(model.Selection(nil), model.Probes...)
	}
	if cfg.Observer == nil {
		cfg.Observer = func(Event) {}
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Session{cfg: cfg}
}

// Runs returns the number of attempts per sampled probe.
func (s *Session) Runs() int {
	return s.cfg.Runs
}

// Run executes the session. Attempts run strictly one after another.
// Measurement failures are counted and never abort the session; only ctx
// cancellation does.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	available := 0
	for _, t := range s.cfg.Targets {
		if t.Available() {
			available++
		} else {
			s.cfg.Logger.Warn().Str("target", t.Name).Msg("Target build not found, skipping")
		}
	}
	if available == 0 {
		return nil, ErrNoTargets
	}

	res := &Result{
		Record: model.Record{
			Platform:  s.cfg.Platform,
			Arch:      s.cfg.Arch,
			Timestamp: s.cfg.Now(),
			Runs:      s.cfg.Runs,
		},
		Outcomes: make(map[Cell]model.Outcome),
		Samples:  make(map[Cell][]float64),
	}

	for _, p := range model.Probes {
		if !s.cfg.Selection.Has(p) {
			continue
		}

		for _, t := range s.cfg.Targets {
			o, err := s.runProbe(ctx, res, p, t)
			if err != nil {
				return nil, err
			}
			res.Outcomes[Cell{Target: t.ID, Probe: p}] = o
			s.cfg.Observer(Event{Kind: EventProbeDone, Target: t.ID, Probe: p, Outcome: o})
		}
	}

	if res.Failures > 0 {
		s.cfg.Logger.Warn().Int("failures", res.Failures).Msg("Some measurement attempts failed")
	}

	return res, nil
}

func (s *Session) runProbe(ctx context.Context, res *Result, p model.Probe, t target.Target) (model.Outcome, error) {
	if !t.Available() {
		return model.Unsupported{Reason: "build not found"}, nil
	}

	attempts := s.cfg.Runs
	if p.IsSize() {
		attempts = 1
	}

	s.cfg.Observer(Event{Kind: EventProbeStarted, Target: t.ID, Probe: p, Runs: attempts})

	cell := Cell{Target: t.ID, Probe: p}
	failures := 0

	for run := 1; run <= attempts; run++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v, err := s.cfg.Runner.Run(ctx, p, t)
		if err == nil && p.IsSize() && v <= 0 {
			err = errEmptyArtifact
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			failures++
			res.Failures++
			s.cfg.Logger.Debug().
				Err(err).
				Str("target", string(t.ID)).
				Str("probe", string(p)).
				Int("run", run).
				Msg("Measurement attempt failed")
		} else {
			res.Samples[cell] = append(res.Samples[cell], v)
		}

		s.cfg.Observer(Event{
			Kind:   EventAttempt,
			Target: t.ID,
			Probe:  p,
			Run:    run,
			Runs:   attempts,
			Value:  v,
			Err:    err,
		})
	}

	samples := res.Samples[cell]
	if len(samples) == 0 {
		return model.Skipped{Attempts: attempts, Failures: failures}, nil
	}

	st, err := stats.Aggregate(samples)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s/%s: %w", t.ID, p, err)
	}
	res.Record.Target(t.ID).Set(p, st)

	return model.Success{Stats: st}, nil
}

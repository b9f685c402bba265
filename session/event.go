package session

import "github.com/shellbench/shellbench/model"

// EventKind tells what an Event reports.
type EventKind int

const (
	// EventProbeStarted is sent before the first attempt of a probe
	// against a target.
	EventProbeStarted EventKind = iota
	// EventAttempt is sent after every attempt, successful or not.
	EventAttempt
	// EventProbeDone carries the final Outcome of a (target, probe) pair.
	EventProbeDone
)

// Event reports session progress.
type Event struct {
	Kind   EventKind
	Target model.TargetID
	Probe  model.Probe
	// Run is the 1-based attempt number, set for EventAttempt
	Run  int
	Runs int
	// Value and Err are the attempt's sample or failure
	Value   float64
	Err     error
	Outcome model.Outcome
}

// Observer receives events synchronously from the session goroutine.
type Observer func(Event)

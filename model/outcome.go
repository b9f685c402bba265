package model

// Outcome is the result of one probe against one target. It is one of
// Success, Skipped or Unsupported.
type Outcome interface {
	isOutcome()
}

// Success carries the statistics over at least one successful sample.
type Success struct {
	Stats Statistics
}

// Skipped means the probe ran but no attempt produced a sample, or the probe
// was not selected (Attempts == 0).
type Skipped struct {
	Attempts int
	Failures int
}

// Unsupported means the probe could not run against the target at all,
// for example because the target's build was not found.
type Unsupported struct {
	Reason string
}

func (Success) isOutcome()     {}
func (Skipped) isOutcome()     {}
func (Unsupported) isOutcome() {}

// OutcomeOf projects a stored record cell back into an Outcome. Records do
// not keep attempt counts, so missing data is reported as Skipped.
func OutcomeOf(r *Record, id TargetID, p Probe) Outcome {
	t := r.Target(id)
	if t == nil {
		return Unsupported{Reason: "unknown target " + string(id)}
	}
	if stats, ok := t.Get(p); ok {
		return Success{Stats: stats}
	}
	return Skipped{}
}

// Mean returns the mean of a Success outcome.
func Mean(o Outcome) (float64, bool) {
	if s, ok := o.(Success); ok {
		return s.Stats.Mean, true
	}
	return 0, false
}

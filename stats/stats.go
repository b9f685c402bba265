// Package stats reduces repeated benchmark samples into summary statistics.
package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/shellbench/shellbench/model"
)

// ErrNoSamples is returned when there is nothing to aggregate.
var ErrNoSamples = errors.New("no samples collected")

// Aggregate returns mean, population standard deviation, min and max of
// samples. The standard deviation divides by N: it describes the observed
// run-to-run spread, it does not estimate a larger population.
func Aggregate(samples []float64) (model.Statistics, error) {
	if len(samples) == 0 {
		return model.Statistics{}, ErrNoSamples
	}

	lo, hi := floats.Min(samples), floats.Max(samples)
	if lo == hi {
		return model.Statistics{Mean: lo, StdDev: 0, Min: lo, Max: hi}, nil
	}

	mean, std := stat.PopMeanStdDev(samples, nil)

	// Rounding can push the mean a hair outside [min, max].
	mean = math.Min(math.Max(mean, lo), hi)

	return model.Statistics{Mean: mean, StdDev: std, Min: lo, Max: hi}, nil
}

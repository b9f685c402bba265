package cli

// This file contains the flags shared by the benchmark commands.

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/shellbench/shellbench/model"
	"github.com/shellbench/shellbench/session"
)

// OnlyFlag restricts the session to a probe or a named probe set.
func OnlyFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "only",
		Usage:   fmt.Sprintf("Run only one probe (%s) or a set (all, quick)", probeNames()),
		EnvVars: []string{"SHELLBENCH_ONLY"},
	}
}

// RunsFlag sets the number of attempts per sampled probe.
func RunsFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "runs",
		Aliases: []string{"n"},
		Usage:   "Number of runs per sampled probe",
		Value:   session.DefaultRuns,
		EnvVars: []string{"SHELLBENCH_RUNS"},
	}
}

// LimitFlag limits the number of history entries shown.
func LimitFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Usage:   "Limit number of results (0 shows all)",
		Value:   20,
	}
}

func probeNames() string {
	names := make([]string, len(model.Probes))
	for i, p := range model.Probes {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// benchmarkOptions reads the probe selection and run count from ctx.
func (a *App) benchmarkOptions(ctx *cli.Context) (model.Selection, int, error) {
	only := ctx.String("only")
	sel, recognized := model.ParseSelection(only)
	if !recognized {
		a.logger.Warn().Str("only", only).Msg("Unknown probe, running all probes")
	}

	runs := ctx.Int("runs")
	if runs < 1 {
		return nil, 0, fmt.Errorf("--runs must be at least 1, got %d", runs)
	}

	return sel, runs, nil
}

package cli

// This file contains benchmark history functionality for listing
// previous sessions.

import (
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/shellbench/shellbench/history"
	"github.com/shellbench/shellbench/model"
	"github.com/shellbench/shellbench/report"
)

func (a *App) history(ctx *cli.Context) error {
	limit := ctx.Int("limit")

	root, err := history.ProjectRoot()
	if err != nil {
		return err
	}

	store := &history.Store{Path: history.DefaultPath(root), Logger: a.logger}
	records, err := store.Load()
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(a.stdout, "No benchmark results found")
		fmt.Fprintf(a.stdout, "Results are saved to %s\n", store.Path)
		return nil
	}

	printHistory(a.stdout, records, limit)
	return nil
}

// printHistory lists records newest first, numbered in the order they were
// recorded.
func printHistory(w io.Writer, records []model.Record, limit int) {
	fmt.Fprintf(w, "\n=== Benchmark History (%d total) ===\n\n", len(records))

	shown := 0
	for i := len(records) - 1; i >= 0; i-- {
		if limit > 0 && shown == limit {
			break
		}
		shown++

		r := &records[i]
		fmt.Fprintf(w, "#%d  %s  %s/%s  runs=%d\n",
			i+1, r.Timestamp.Local().Format("2006-01-02 15:04:05"), r.Platform, r.Arch, r.Runs)

		src := report.RecordOutcomes{Record: r}
		for _, p := range model.Probes {
			e := src.Outcome(model.TargetElectron, p)
			t := src.Outcome(model.TargetTauri, p)
			if _, ok := model.Mean(e); !ok {
				if _, ok := model.Mean(t); !ok {
					continue
				}
			}

			fmt.Fprintf(w, "   %-12s %s\n", p.Label()+":", strings.Join([]string{
				"Electron " + report.FormatOutcome(p, e),
				"Tauri " + report.FormatOutcome(p, t),
				"winner " + report.Winner(e, t),
			}, " | "))
		}
		fmt.Fprintln(w)
	}
}

package cli

// This file contains the default action: run a benchmark session, print the
// summary and persist the results.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/shellbench/shellbench/history"
	"github.com/shellbench/shellbench/model"
	"github.com/shellbench/shellbench/probe"
	"github.com/shellbench/shellbench/report"
	"github.com/shellbench/shellbench/sampler"
	"github.com/shellbench/shellbench/session"
	"github.com/shellbench/shellbench/target"
)

// benchmark holds what a session needs, resolved once per command.
type benchmark struct {
	root      string
	platform  string
	arch      string
	targets   []target.Target
	selection model.Selection
	runs      int
}

func (a *App) prepare(ctx *cli.Context) (*benchmark, error) {
	sel, runs, err := a.benchmarkOptions(ctx)
	if err != nil {
		return nil, err
	}

	root, err := history.ProjectRoot()
	if err != nil {
		return nil, err
	}

	b := &benchmark{
		root:      root,
		platform:  target.PlatformName(a.goos),
		arch:      target.ArchName(a.goarch),
		targets:   target.Discover(root, a.goos),
		selection: sel,
		runs:      runs,
	}

	for _, t := range b.targets {
		a.logger.Debug().
			Str("target", t.Name).
			Str("exe", t.Exe).
			Str("dir", t.Dir).
			Msg("Discovered target")
	}

	return b, nil
}

// newSession wires the sampler and probe runner for the current OS into a
// session.
func (a *App) newSession(b *benchmark, logger zerolog.Logger, observer session.Observer) *session.Session {
	inspector := sampler.New(a.goos, sampler.WithLogger(logger))
	runner := probe.New(inspector, probe.WithLogger(logger))

	return session.New(session.Config{
		Targets:   b.targets,
		Selection: b.selection,
		Runs:      b.runs,
		Runner:    runner,
		Observer:  observer,
		Logger:    logger,
		Platform:  b.platform,
		Arch:      b.arch,
	})
}

func (a *App) run(ctx *cli.Context) error {
	b, err := a.prepare(ctx)
	if err != nil {
		return err
	}

	runCtx, stop := withInterrupt(ctx.Context)
	defer stop()

	fmt.Fprintf(a.stdout, "\n🖥️  Platform: %s (%s)\n\n", b.platform, b.arch)

	progress := newProgressPrinter(a.stdout, b.targets)
	res, err := a.newSession(b, a.logger, progress.observe).Run(runCtx)
	if errors.Is(err, session.ErrNoTargets) {
		return cli.Exit("No apps built. Build the Electron and Tauri apps first.", 1)
	}
	if err != nil {
		return err
	}

	report.PrintSummary(a.stdout, res)

	return a.persist(b, res)
}

// persist appends the record to the history, exports the raw samples and
// refreshes the README. Only the history is required to succeed.
func (a *App) persist(b *benchmark, res *session.Result) error {
	store := &history.Store{Path: history.DefaultPath(b.root), Logger: a.logger}
	records, err := store.Append(res.Record)
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	fmt.Fprintf(a.stdout, "\n📄 Results appended to: %s\n", store.Path)
	fmt.Fprintf(a.stdout, "   Total benchmarks in history: %d\n", len(records))

	profileDir := profilesDir(b.root)
	if profilePath, err := report.WriteProfile(profileDir, res); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to write sample profile")
	} else if profilePath != "" {
		a.logger.Info().Msgf("View samples with: go tool pprof -tags %s", profilePath)
	}

	readme := filepath.Join(b.root, "README.md")
	updated, err := report.InjectFile(readme, report.Markdown(&res.Record, records))
	switch {
	case errors.Is(err, report.ErrMarkersNotFound):
		a.logger.Warn().Str("path", readme).Msg("README has no benchmark markers, not updated")
	case err != nil:
		a.logger.Warn().Err(err).Str("path", readme).Msg("Failed to update README")
	case updated:
		fmt.Fprintln(a.stdout, "📝 README.md updated with results and history")
	}

	return nil
}

// withInterrupt is the context used by commands that run until Ctrl-C.
func withInterrupt(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}

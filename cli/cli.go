package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "shellbench"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
	stdout io.Writer

	// Platform the benchmark runs on, runtime values unless overridden in tests
	goos   string
	goarch string
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
			NoColor:    !isTerminal(os.Stderr),
		})

	app := &App{
		logger: logger,
		stdout: os.Stdout,
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
		cli: &cli.App{
			Name:  AppName,
			Usage: "Compare startup time, memory, CPU load and size of the Electron and Tauri builds",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
				OnlyFlag(),
				RunsFlag(),
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}

	// Default action when no command is specified
	app.cli.Action = app.run

	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "tui",
		Usage:  "Run the benchmark from an interactive terminal dashboard",
		Action: app.dashboard,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "history",
		Usage:  "List previous benchmark results",
		Action: app.history,
		Flags: []cli.Flag{
			LimitFlag(),
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "profile",
		Usage:     "Open the samples of a previous session in pprof",
		ArgsUsage: "[INDEX|TIMESTAMP] [-- pprof args...]",
		Action:    app.profile,
	})
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		if len(commit) > 8 {
			commit = commit[:8]
		}
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

package cli

// This file contains the interactive dashboard command.

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/shellbench/shellbench/session"
	"github.com/shellbench/shellbench/tui"
)

var errNoTerminal = errors.New("the dashboard needs an interactive terminal, run without the tui command instead")

// dashboard reads --only and --runs from the global flags, so
// "shellbench --runs 3 tui" runs three attempts per probe.
func (a *App) dashboard(ctx *cli.Context) error {
	b, err := a.prepare(ctx)
	if err != nil {
		return err
	}

	if !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
		return errNoTerminal
	}

	runCtx, stop := withInterrupt(ctx.Context)
	defer stop()

	// Log lines would tear the alternate screen; failures show up in the
	// dashboard's error list instead.
	quiet := zerolog.Nop()

	return tui.Run(runCtx, tui.Config{
		Platform:  b.platform,
		Arch:      b.arch,
		Selection: b.selection,
		Run: func(ctx context.Context, observe session.Observer) (*session.Result, error) {
			return a.newSession(b, quiet, observe).Run(ctx)
		},
	})
}

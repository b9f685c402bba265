package cli

// This file contains the profile command for opening the samples of a
// previous session in pprof.

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/shellbench/shellbench/history"
)

const profileExt = ".pb.gz"

func profilesDir(root string) string {
	return filepath.Join(history.ResultsDir(root), "profiles")
}

// latestProfile selects the newest profile.
const latestProfile = "0"

// isProfileSelector reports whether arg picks a profile rather than being a
// pprof flag: a history offset such as "0" or "-2", or a timestamp prefix.
func isProfileSelector(arg string) bool {
	if !strings.HasPrefix(arg, "-") {
		return true
	}
	_, err := strconv.Atoi(arg)
	return err == nil
}

// parseProfileArgs splits "[SELECTOR] [--] [pprof args...]". Without a
// selector the newest profile is opened.
func parseProfileArgs(in []string) (sel string, pprofArgs []string) {
	sel = latestProfile
	if len(in) > 0 && in[0] != "--" && isProfileSelector(in[0]) {
		sel, in = in[0], in[1:]
	}
	if len(in) > 0 && in[0] == "--" {
		in = in[1:]
	}
	if len(in) == 0 {
		return sel, nil
	}
	return sel, in
}

// listProfiles returns the profile files in dir, newest first.
func listProfiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), profileExt) {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// selectProfile resolves sel against names (newest first). Zero or a
// negative number counts back from the newest profile, anything else is
// matched as a timestamp prefix.
func selectProfile(names []string, sel string) (string, error) {
	if parsed, err := strconv.ParseInt(sel, 10, 64); err == nil && parsed <= 0 {
		index := int(-parsed)
		if index >= len(names) {
			return "", fmt.Errorf("index %s out of range (only %d profiles)", sel, len(names))
		}
		return names[index], nil
	}

	for _, name := range names {
		if strings.HasPrefix(name, sel) {
			return name, nil
		}
	}
	return "", fmt.Errorf("no profile found matching: %s (use 0 for the latest, -1 for the one before, or a timestamp prefix)", sel)
}

func (a *App) profile(ctx *cli.Context) error {
	sel, pprofArgs := parseProfileArgs(ctx.Args().Slice())

	root, err := history.ProjectRoot()
	if err != nil {
		return err
	}

	dir := profilesDir(root)
	names, err := listProfiles(dir)
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}
	if len(names) == 0 {
		return fmt.Errorf("no profiles found in %s", dir)
	}

	name, err := selectProfile(names, sel)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, name)
	fmt.Fprintf(a.stdout, "Profile: %s\n", path)

	args := []string{"tool", "pprof"}
	args = append(args, pprofArgs...)
	args = append(args, path)

	cmd := exec.CommandContext(ctx.Context, "go", args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Dir = dir

	a.logger.Debug().Strs("args", cmd.Args).Msg("Starting pprof")
	return cmd.Run()
}

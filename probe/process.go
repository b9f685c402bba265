package probe

// This file contains the child process lifecycle shared by the sampled
// probes: start in a separate process group, reap in the background and
// kill the whole group when the probe is done.

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/shellbench/shellbench/clock"
)

type process struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

// start launches cmd. The reaper calls Wait only after drained is closed,
// since Wait closes the stderr pipe; drained may be nil when no pipe is read.
func start(cmd *exec.Cmd, drained <-chan struct{}) (*process, error) {
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}

	p := &process{cmd: cmd, done: make(chan struct{})}
	go func() {
		if drained != nil {
			<-drained
		}
		p.err = cmd.Wait()
		close(p.done)
	}()

	return p, nil
}

func (p *process) Pid() int {
	return p.cmd.Process.Pid
}

// Done is closed once the process has been reaped.
func (p *process) Done() <-chan struct{} {
	return p.done
}

func (p *process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Err is the result of Wait. Only valid after Done is closed.
func (p *process) Err() error {
	if !p.Exited() {
		return nil
	}
	return p.err
}

// Kill kills the process and everything in its group, then waits up to
// reap for the process to be collected.
func (p *process) Kill(c clock.Clock, reap time.Duration) error {
	if err := killTree(p.cmd); err != nil && !p.Exited() {
		return err
	}

	select {
	case <-p.done:
		return nil
	case <-c.After(reap):
		return fmt.Errorf("pid %d not reaped after %s", p.Pid(), reap)
	}
}

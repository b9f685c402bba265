// Package clock provides the timed waits used by probes and samplers.
// Every delay goes through a Clock so tests can run without sleeping.
package clock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout is returned by WaitFor when the condition never became true.
var ErrTimeout = errors.New("timed out waiting for condition")

// Clock is the source of time for waits.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, c Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.After(d):
		return nil
	}
}

// WaitFor polls cond every interval until it returns true, timeout elapses or
// ctx is done. cond is always evaluated at least once.
func WaitFor(ctx context.Context, c Clock, timeout, interval time.Duration, cond func() bool) error {
	deadline := c.Now().Add(timeout)
	for {
		if cond() {
			return nil
		}

		remaining := deadline.Sub(c.Now())
		if remaining <= 0 {
			return ErrTimeout
		}
		if err := Sleep(ctx, c, min(interval, remaining)); err != nil {
			return err
		}
	}
}

// Fake is a Clock whose timers fire immediately and advance Now by the
// requested duration. It records every wait it was asked for.
type Fake struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

// NewFake returns a Fake starting at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	f.waits = append(f.waits, d)
	ch := make(chan time.Time, 1)
	ch <- f.now
	return ch
}

// Advance moves the clock forward without recording a wait.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Waits returns the durations passed to After so far.
func (f *Fake) Waits() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.waits...)
}

// Package tui is the interactive terminal dashboard. It drives the same
// benchmark session as the command line and renders results as they arrive.
//
// The model is used from the bubbletea event loop only. Session progress
// reaches it as messages sent through the running program.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shellbench/shellbench/model"
	"github.com/shellbench/shellbench/report"
	"github.com/shellbench/shellbench/session"
)

const pending = "--"

// RunFunc runs one benchmark session and reports progress to observe.
type RunFunc func(ctx context.Context, observe session.Observer) (*session.Result, error)

// Config configures the dashboard.
type Config struct {
	Platform  string
	Arch      string
	Selection model.Selection
	Run       RunFunc
}

// progressMsg carries a session event into the event loop.
type progressMsg session.Event

// doneMsg is returned by the session command when the session ends.
type doneMsg struct {
	result *session.Result
	err    error
}

// sender forwards messages to the program once it exists and tracks the
// sessions still running. It is shared by every copy of the model.
type sender struct {
	send func(tea.Msg)

	mu       sync.Mutex
	sessions sync.WaitGroup
	closed   bool
}

func (s *sender) Send(msg tea.Msg) {
	if s.send != nil {
		s.send(msg)
	}
}

// begin registers a session. It reports false once the dashboard is
// shutting down, in which case the session must not start.
func (s *sender) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.sessions.Add(1)
	return true
}

func (s *sender) end() {
	s.sessions.Done()
}

// shutdown refuses new sessions and waits for the running one to return,
// which happens only after its child processes are stopped.
func (s *sender) shutdown() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.sessions.Wait()
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	cfg    Config
	ctx    context.Context
	sender *sender

	spinner spinner.Model
	running bool
	cancel  context.CancelFunc
	status  string

	cells  map[session.Cell]string
	errors []string
	result *session.Result

	quitting bool
}

// New returns the dashboard model.
func New(cfg Config) Model {
	if len(cfg.Selection) == 0 {
		cfg.Selection = append(model.Selection(nil), model.Probes...)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	return Model{
		cfg:     cfg,
		ctx:     context.Background(),
		sender:  &sender{},
		spinner: sp,
		cells:   make(map[session.Cell]string),
	}
}

// Run starts the dashboard and blocks until the user quits and any running
// session has stopped its child processes.
func Run(ctx context.Context, cfg Config, opts ...tea.ProgramOption) error {
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(cfg)
	m.ctx = sessionCtx
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(m, opts...)
	m.sender.send = p.Send

	_, err := p.Run()

	cancel()
	m.sender.shutdown()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			m.quitting = true
			return m, tea.Quit
		case "r":
			if m.running {
				return m, nil
			}
			return m.start()
		}

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		m.apply(session.Event(msg))
		return m, nil

	case doneMsg:
		m.running = false
		m.status = ""
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.result = msg.result
		if msg.err != nil {
			m.errors = append(m.errors, msg.err.Error())
		}
		return m, nil
	}

	return m, nil
}

func (m Model) start() (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(m.ctx)

	m.running = true
	m.cancel = cancel
	m.status = "Starting..."
	m.cells = make(map[session.Cell]string)
	m.errors = nil
	m.result = nil

	return m, tea.Batch(m.spinner.Tick, m.runSession(ctx))
}

// runSession returns the command running the session in the background.
func (m Model) runSession(ctx context.Context) tea.Cmd {
	run, s := m.cfg.Run, m.sender
	return func() tea.Msg {
		if run == nil {
			return doneMsg{err: errors.New("no session configured")}
		}
		if !s.begin() {
			return doneMsg{err: context.Canceled}
		}
		defer s.end()

		res, err := run(ctx, func(e session.Event) {
			s.Send(progressMsg(e))
		})
		return doneMsg{result: res, err: err}
	}
}

func (m *Model) apply(e session.Event) {
	cell := session.Cell{Target: e.Target, Probe: e.Probe}
	name := e.Target.DisplayName()

	switch e.Kind {
	case session.EventProbeStarted:
		m.status = fmt.Sprintf("Measuring %s for %s...", e.Probe.Label(), name)

	case session.EventAttempt:
		m.status = fmt.Sprintf("%s %s run %d/%d", name, e.Probe.Label(), e.Run, e.Runs)

	case session.EventProbeDone:
		switch o := e.Outcome.(type) {
		case model.Success:
			m.cells[cell] = report.FormatStats(e.Probe, o.Stats)
		case model.Skipped:
			m.cells[cell] = "N/A"
			if o.Failures > 0 {
				m.errors = append(m.errors, fmt.Sprintf("Failed to measure %s %s (%d/%d attempts failed)",
					name, e.Probe.Label(), o.Failures, o.Attempts))
			}
		case model.Unsupported:
			m.cells[cell] = "N/A"
			msg := fmt.Sprintf("%s: %s", name, o.Reason)
			if !contains(m.errors, msg) {
				m.errors = append(m.errors, msg)
			}
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

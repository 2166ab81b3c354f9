// Package watch implements the foreground watchdog renderer for
// `overstory watch`: a small Bubble Tea model that drives the daemon's
// Pass() on a tick and streams its HealthCheck output, using a
// mutex-guarded fetch-then-render shape with periodic refresh via a
// tea.Cmd since watch polls in-process rather than shelling out. The
// health-check log renders inside a scrollable bubbles/viewport, with a
// bubbles/spinner shown until the first pass completes.
package watch

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xcawolfe-amzn/overstory/internal/watchdog"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Model is the bubbletea model driving one watchdog daemon in the
// foreground and rendering its HealthCheck stream.
type Model struct {
	daemon   *watchdog.Daemon
	interval time.Duration
	spinner  spinner.Model
	view     viewport.Model

	mu     sync.RWMutex
	checks []watchdog.HealthCheck
	err    error
	passes int
	ready  bool
}

// New returns a Model that ticks daemon.Pass every interval.
func New(daemon *watchdog.Daemon, interval time.Duration) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = titleStyle
	m := &Model{
		daemon:   daemon,
		interval: interval,
		spinner:  sp,
		view:     viewport.New(80, 20),
	}
	daemon.OnHealthCheck = m.record
	return m
}

func (m *Model) record(hc watchdog.HealthCheck) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks = append(m.checks, hc)
	if len(m.checks) > 200 {
		m.checks = m.checks[len(m.checks)-200:]
	}
}

// Init kicks off the first pass and starts the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.pass, m.spinner.Tick)
}

type passDoneMsg struct{ err error }

func (m *Model) pass() tea.Msg {
	err := m.daemon.Pass()
	return passDoneMsg{err: err}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return m.pass() })
}

// Update handles ticks, spinner frames, and key presses.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.Width = msg.Width
		if h := msg.Height - 4; h > 0 {
			m.view.Height = h
		}
		return m, nil

	case passDoneMsg:
		m.mu.Lock()
		m.err = msg.err
		m.passes++
		m.ready = true
		m.mu.Unlock()
		m.view.SetContent(m.renderChecks())
		m.view.GotoBottom()
		return m, m.tick()

	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m *Model) renderChecks() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var b strings.Builder
	for _, hc := range m.checks {
		b.WriteString(renderCheck(hc) + "\n")
	}
	return b.String()
}

// View renders the most recent health checks, newest last, inside a
// scrollable viewport.
func (m *Model) View() string {
	m.mu.RLock()
	passes, ready, err := m.passes, m.ready, m.err
	m.mu.RUnlock()

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("overstory watch — pass %d", passes)))
	b.WriteString("\n\n")
	if err != nil {
		b.WriteString(badStyle.Render("pass error: "+err.Error()) + "\n")
	}
	if !ready {
		b.WriteString(m.spinner.View() + " waiting for the first pass...\n")
		return b.String()
	}
	b.WriteString(m.view.View())
	b.WriteString("\n↑/↓ scroll · q to quit\n")
	return b.String()
}

func renderCheck(hc watchdog.HealthCheck) string {
	line := fmt.Sprintf("%-20s state=%-10s tmux=%-5v action=%s", hc.AgentName, hc.State, hc.TmuxAlive, hc.Action)
	switch hc.Action {
	case watchdog.ActionOK:
		return okStyle.Render(line)
	case watchdog.ActionTerminate:
		return badStyle.Render(line)
	default:
		return warnStyle.Render(line)
	}
}

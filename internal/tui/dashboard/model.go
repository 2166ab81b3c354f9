// Package dashboard implements `overstory dashboard`, a live
// session-table Bubble Tea view: a mutex-guarded fetch-then-render
// model polling internal/sessionstore directly rather than shelling
// out to a tracker CLI, rendered through a scrollable bubbles/table
// component instead of a hand-formatted line grid.
package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
)

var errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

// Model polls the session store at a fixed interval and renders an
// always-current, scrollable table of every session.
type Model struct {
	sessions *sessionstore.Store
	interval time.Duration
	table    table.Model

	mu  sync.RWMutex
	err error
}

// New returns a Model polling sessions every interval.
func New(sessions *sessionstore.Store, interval time.Duration) *Model {
	columns := []table.Column{
		{Title: "NAME", Width: 22},
		{Title: "CAPABILITY", Width: 12},
		{Title: "TASK", Width: 14},
		{Title: "STATE", Width: 10},
		{Title: "DEPTH", Width: 6},
		{Title: "PARENT", Width: 18},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(20),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	tbl.SetStyles(styles)

	return &Model{sessions: sessions, interval: interval, table: tbl}
}

type refreshMsg struct {
	rows []*sessionstore.Session
	err  error
}

func (m *Model) refresh() tea.Msg {
	rows, err := m.sessions.GetAll()
	if err == nil {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	}
	return refreshMsg{rows: rows, err: err}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return m.refresh() })
}

// Init triggers the first refresh.
func (m *Model) Init() tea.Cmd {
	return m.refresh
}

// Update handles refreshes, table navigation, and quit keys.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if h := msg.Height - 4; h > 0 {
			m.table.SetHeight(h)
		}
		return m, nil

	case refreshMsg:
		m.mu.Lock()
		m.err = msg.err
		m.mu.Unlock()
		m.table.SetRows(sessionRows(msg.rows))
		return m, m.tick()

	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func sessionRows(sessions []*sessionstore.Session) []table.Row {
	rows := make([]table.Row, 0, len(sessions))
	for _, s := range sessions {
		parent := s.ParentAgent
		if parent == "" {
			parent = "-"
		}
		task := s.TaskID
		if task == "" {
			task = "-"
		}
		rows = append(rows, table.Row{
			s.Name, s.Capability, task, string(s.State), fmt.Sprintf("%d", s.Depth), parent,
		})
	}
	return rows
}

// View renders the session table.
func (m *Model) View() string {
	m.mu.RLock()
	err := m.err
	m.mu.RUnlock()

	var b strings.Builder
	b.WriteString(m.table.View())
	b.WriteString("\n")
	if err != nil {
		b.WriteString(errStyle.Render("error: "+err.Error()) + "\n")
	}
	b.WriteString("↑/↓ navigate · q to quit\n")
	return b.String()
}

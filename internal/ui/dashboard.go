// Package ui holds the live terminal dashboard.
package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"questctl/internal/dashboard"
	"questctl/internal/output"
)

// SnapshotMsg delivers a refreshed dashboard.
type SnapshotMsg dashboard.Snapshot

// ErrMsg reports a failed refresh. The previous snapshot stays on screen.
type ErrMsg struct{ Err error }

// ExpiredMsg ends the view because the session token was rejected.
type ExpiredMsg struct{}

// DashboardModel is the bubbletea model behind `dashboard --watch`.
// Snapshots arrive from a poller through Program.Send.
type DashboardModel struct {
	refresh  func()
	snap     *dashboard.Snapshot
	err      error
	loading  bool
	expired  bool
	quitting bool
}

// NewDashboardModel returns a model that calls refresh when the user
// presses r.
func NewDashboardModel(refresh func()) DashboardModel {
	return DashboardModel{refresh: refresh, loading: true}
}

func (m DashboardModel) Init() tea.Cmd {
	return nil
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if m.refresh != nil {
				m.loading = true
				m.refresh()
			}
		}
	case SnapshotMsg:
		s := dashboard.Snapshot(msg)
		m.snap = &s
		m.err = nil
		m.loading = false
	case ErrMsg:
		m.err = msg.Err
		m.loading = false
	case ExpiredMsg:
		m.expired = true
		return m, tea.Quit
	}
	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().Foreground(output.Gold).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(output.Muted)
	errStyle   = lipgloss.NewStyle().Foreground(output.Red)
)

func (m DashboardModel) View() string {
	if m.quitting {
		return ""
	}
	if m.expired {
		return errStyle.Render("Session expired (run: questctl login)") + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("⚔️  Quest Admin Dashboard"))
	if m.loading {
		b.WriteString(hintStyle.Render("  refreshing…"))
	}
	b.WriteString("\n\n")
	if m.snap != nil {
		b.WriteString(output.RenderDashboard(*m.snap))
		b.WriteString("\n")
	} else {
		b.WriteString(hintStyle.Render("Loading dashboard…") + "\n")
	}
	if m.err != nil {
		b.WriteString(errStyle.Render("refresh failed: "+m.err.Error()) + "\n")
	}
	b.WriteString("\n" + hintStyle.Render("r refresh · q quit") + "\n")
	return b.String()
}

// Expired reports whether the view ended on a rejected session.
func (m DashboardModel) Expired() bool {
	return m.expired
}

package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"questctl/internal/dashboard"
)

var stateIcons = map[string]string{
	dashboard.StateOK:    "🟢",
	dashboard.StateWarn:  "🟡",
	dashboard.StateError: "🔴",
}

// FormatDashboard writes the dashboard as plain text.
func FormatDashboard(w io.Writer, s dashboard.Snapshot) {
	st := s.Stats
	fmt.Fprintf(w, "Players   %d active / %d total\n", st.ActiveUsers, st.TotalUsers)
	fmt.Fprintf(w, "Quests    %-18s [%s]\n", fmt.Sprintf("%d active", st.ActiveTasks), st.QuestBadge())
	fmt.Fprintf(w, "Pending   %-18s [%s]\n", fmt.Sprintf("%d to verify", st.Pending), st.PendingBadge())
	fmt.Fprintf(w, "Loot      %-18s [%s]\n", fmt.Sprintf("%d active", st.ActiveRewards), st.LootBadge())
	fmt.Fprintf(w, "Perf      %-18s %s\n", s.Performance.Grade, s.Performance.Detail())
	FormatServers(w, s.Servers)
	if !s.At.IsZero() {
		fmt.Fprintf(w, "Updated   %s\n", s.At.Format("15:04:05"))
	}
}

// FormatServers writes the API and database status rows.
func FormatServers(w io.Writer, s dashboard.ServerStatus) {
	fmt.Fprintf(w, "API       %s %-10s %s\n", stateIcons[s.API.State], s.API.Text, s.API.Detail)
	fmt.Fprintf(w, "Database  %s %-10s %s\n", stateIcons[s.Database.State], s.Database.Text, s.Database.Detail)
	if s.Legacy {
		fmt.Fprintln(w, "          (health checks; status endpoint unavailable)")
	}
}

var badgeColors = map[string]lipgloss.Color{
	"CLEAR":   Green,
	"PENDING": Yellow,
	"HIGH":    Orange,
	"URGENT":  Red,
	"LIVE":    Green,
	"ACTIVE":  Blue,
	"HOT":     Red,
	"CATALOG": Muted,
	"STOCKED": Blue,
	"FULL":    Purple,
	"OPTIMAL": Green,
	"GOOD":    Yellow,
	"SLOW":    Orange,
	"ERROR":   Red,
}

// Badge colours a dashboard badge label.
func Badge(label string) string {
	c, ok := badgeColors[label]
	if !ok {
		c = Muted
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(label)
}

// RenderDashboard renders the dashboard as four stat tiles above the
// server rows.
func RenderDashboard(s dashboard.Snapshot) string {
	st := s.Stats
	tile := func(title, value, badge string) string {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(0, 1).
			Width(16).
			Render(lipgloss.JoinVertical(lipgloss.Left,
				lipgloss.NewStyle().Foreground(Muted).Render(title),
				lipgloss.NewStyle().Bold(true).Render(value),
				badge,
			))
	}
	tiles := lipgloss.JoinHorizontal(lipgloss.Top,
		tile("Players", fmt.Sprintf("%d / %d", st.ActiveUsers, st.TotalUsers), lipgloss.NewStyle().Foreground(Muted).Render("active")),
		tile("Quests", fmt.Sprint(st.ActiveTasks), Badge(st.QuestBadge())),
		tile("Pending", fmt.Sprint(st.Pending), Badge(st.PendingBadge())),
		tile("Loot", fmt.Sprint(st.ActiveRewards), Badge(st.LootBadge())),
	)

	servers := func(name string, l dashboard.ServerLine) string {
		return fmt.Sprintf("%-9s %s %s  %s", name, stateIcons[l.State],
			lipgloss.NewStyle().Bold(true).Render(l.Text),
			lipgloss.NewStyle().Foreground(Muted).Render(l.Detail))
	}
	lines := []string{
		tiles,
		servers("API", s.Servers.API),
		servers("Database", s.Servers.Database),
		fmt.Sprintf("%-9s %s  %s", "Perf", Badge(s.Performance.Grade), s.Performance.Detail()),
	}
	if !s.At.IsZero() {
		lines = append(lines, lipgloss.NewStyle().Foreground(Muted).Render("Updated "+s.At.Format("15:04:05")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

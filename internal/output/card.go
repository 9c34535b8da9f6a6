package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"questctl/internal/quest"
)

// CardWidth is the outer width of a rendered quest card.
const CardWidth = 56

var (
	Gold   = lipgloss.Color("#f5c542")
	Muted  = lipgloss.Color("#9ca3af")
	Red    = lipgloss.Color("#ef4444")
	Orange = lipgloss.Color("#f97316")
	Yellow = lipgloss.Color("#eab308")
	Green  = lipgloss.Color("#22c55e")
	Blue   = lipgloss.Color("#3b82f6")
	Purple = lipgloss.Color("#a855f7")
)

var toneColors = map[quest.Tone]lipgloss.Color{
	quest.ToneGreen:  Green,
	quest.ToneYellow: Yellow,
	quest.ToneBlue:   Blue,
	quest.TonePurple: Purple,
	quest.ToneGold:   Gold,
}

var levelColors = map[quest.Level]lipgloss.Color{
	quest.LevelInfo:    Blue,
	quest.LevelSuccess: Green,
	quest.LevelWarning: Yellow,
	quest.LevelError:   Red,
}

func cardStyle(hex string) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(hex)).
		Padding(0, 1).
		Width(CardWidth)
}

func renderBadges(badges []quest.Badge) string {
	parts := make([]string, 0, len(badges))
	for _, b := range badges {
		parts = append(parts, lipgloss.NewStyle().Foreground(toneColors[b.Tone]).Render(b.Label))
	}
	return strings.Join(parts, "  ")
}

// RenderCard renders a quest card.
func RenderCard(c quest.Card) string {
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(c.ColorHex)).Bold(true)
	gold := lipgloss.NewStyle().Foreground(Gold).Bold(true)

	platform := c.Platform
	if c.Bonus {
		platform += " 🌟"
	}
	header := fmt.Sprintf("%d. %s %s  %s", c.Position, c.Emoji, lipgloss.NewStyle().Bold(true).Render(normalizeTitle(c.Title)), gold.Render(c.Points))
	body := lipgloss.NewStyle().Foreground(Muted).Render(c.Description)
	footer := renderBadges(c.Badges) + "  " + accent.Render(c.Footer)

	style := cardStyle(c.ColorHex)
	if c.Completed {
		style = style.Faint(true)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		accent.Render(platform),
		body,
		footer,
	))
}

// RenderDetail renders the detail view of a selected quest.
func RenderDetail(d quest.Detail) string {
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(d.ColorHex)).Bold(true)
	muted := lipgloss.NewStyle().Foreground(Muted)

	lines := []string{
		fmt.Sprintf("%s %s", d.Emoji, lipgloss.NewStyle().Bold(true).Render(normalizeTitle(d.Title))),
		accent.Render(d.Platform) + "  " + lipgloss.NewStyle().Foreground(Gold).Bold(true).Render(d.Points),
		d.Description,
		"",
	}
	lines = append(lines, d.ActionLines...)
	if d.Code != nil {
		lines = append(lines, "🔑 "+d.Code.Placeholder)
		if d.Code.Hint != "" {
			lines = append(lines, d.Code.Hint)
		}
	}
	lines = append(lines,
		lipgloss.NewStyle().Foreground(toneColors[d.VerificationBadge.Tone]).Render(d.VerificationBadge.Label),
		muted.Render("Handler: "+d.Handler),
		muted.Render("Method: "+d.VerificationMethod),
	)
	if d.URL != "" {
		lines = append(lines, muted.Render("Link: "+d.URL))
	}
	lines = append(lines, accent.Render("▶ "+d.ButtonText))

	return cardStyle(d.ColorHex).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Notifier prints completion messages, coloured by level.
type Notifier struct {
	Out   io.Writer
	Quiet bool
}

// Notify implements quest.Notifier. Errors and warnings print even when quiet.
func (n Notifier) Notify(level quest.Level, msg string) {
	if n.Quiet && level != quest.LevelError && level != quest.LevelWarning {
		return
	}
	fmt.Fprintln(n.Out, lipgloss.NewStyle().Foreground(levelColors[level]).Render(msg))
}

var _ quest.Notifier = Notifier{}

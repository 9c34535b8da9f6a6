package output

import (
	"fmt"
	"strings"
	"time"
)

// Rarity grades a quest by its reward.
func Rarity(points int) string {
	switch {
	case points < 50:
		return "common"
	case points < 100:
		return "rare"
	case points < 200:
		return "epic"
	default:
		return "legendary"
	}
}

// Priority grades a submission by the reward at stake.
// The grades map to red, orange, yellow and green.
func Priority(points int) string {
	switch {
	case points >= 200:
		return "critical"
	case points >= 100:
		return "high"
	case points >= 50:
		return "medium"
	default:
		return "low"
	}
}

// TimeAgo renders the age of t in whole minutes, hours or days.
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	mins := int(now.Sub(t) / time.Minute)
	hours := mins / 60
	days := hours / 24
	switch {
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	default:
		return fmt.Sprintf("%dd ago", days)
	}
}

var questTypeIcons = map[string]string{
	"telegram": "💬",
	"twitter":  "🐦",
	"youtube":  "📺",
	"website":  "🌐",
	"social":   "📱",
	"manual":   "✍️",
	"unknown":  "❓",
}

// QuestTypeIcon returns the queue icon for a task_type.
func QuestTypeIcon(taskType string) string {
	if icon, ok := questTypeIcons[taskType]; ok {
		return icon
	}
	return questTypeIcons["unknown"]
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

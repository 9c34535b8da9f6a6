// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"questctl/internal/config"
	"questctl/internal/quest"
	"questctl/internal/service"
)

// Structured reports whether format is a machine-readable format.
func Structured(format string) bool {
	return format == config.OutputJSON || format == config.OutputYAML
}

// Encode writes v as indented JSON or YAML.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported output format: %s", format)
}

// FormatTask formats a quest line.
// Format: "{N:>4}  {EMOJI} {TITLE}  +{P} XP  {PLATFORM}  {RARITY}[ flags]\n"
func FormatTask(w io.Writer, num int, t service.Task) {
	d := quest.Classify(t)
	var flags string
	if t.IsBonus {
		flags += " 🌟"
	}
	if !t.IsActive {
		flags += " [inactive]"
	}
	fmt.Fprintf(w, "%4d  %s %s  +%d XP  %s  %s%s\n",
		num, d.Emoji, normalizeTitle(t.Title), t.PointsReward,
		strings.ToUpper(orDefault(t.Platform, "general")), Rarity(t.PointsReward), flags)
}

// FormatUser formats a user line.
func FormatUser(w io.Writer, u service.User) {
	var flags string
	if u.IsBanned {
		flags = " [banned]"
	}
	fmt.Fprintf(w, "%-12s  %-20s  %6d pts  L%d%s\n", u.ID, u.DisplayName(), u.Points, u.Level(), flags)
}

// FormatReward formats a reward line. Stock is claimed/available, or
// claimed/∞ when unlimited.
func FormatReward(w io.Writer, r service.Reward) {
	stock := "∞"
	if r.QuantityAvailable != nil {
		stock = fmt.Sprintf("%d", *r.QuantityAvailable)
	}
	var flags string
	if !r.IsActive {
		flags = " [inactive]"
	}
	fmt.Fprintf(w, "%-12s  %-24s  %5d pts  %-10s  %d/%s%s\n",
		r.ID, normalizeTitle(r.Title), r.PointsCost, orDefault(r.RewardType, "-"), r.QuantityClaimed, stock, flags)
}

// FormatSubmission formats a verification queue line.
func FormatSubmission(w io.Writer, ut service.UserTask, now time.Time) {
	title, taskType, points := "Unknown Quest", "unknown", 0
	if ut.Task != nil {
		title = orDefault(ut.Task.Title, title)
		taskType = orDefault(ut.Task.TaskType, taskType)
		points = ut.Task.PointsReward
	}
	player := "Unknown"
	if ut.User != nil {
		switch {
		case ut.User.Username != "":
			player = "@" + ut.User.Username
		case ut.User.FirstName != "":
			player = ut.User.FirstName
		}
	}
	fmt.Fprintf(w, "%-12s  %s %s  by %s  +%d XP [%s]  %s\n",
		ut.ID, QuestTypeIcon(taskType), normalizeTitle(title), player, points, Priority(points), TimeAgo(ut.CreatedAt.Time, now))
	if ut.ProofURL != "" {
		fmt.Fprintf(w, "%14s🔗 %s\n", "", ut.ProofURL)
	}
	if ut.SubmissionText != "" {
		fmt.Fprintf(w, "%14s💬 %q\n", "", ut.SubmissionText)
	}
}

// FormatAdmin formats an operator account line.
func FormatAdmin(w io.Writer, a service.Admin, now time.Time) {
	role := "admin"
	if a.IsSuperAdmin {
		role = "super admin"
	}
	perms := "-"
	if len(a.Permissions) > 0 {
		perms = strings.Join(a.Permissions, ",")
	}
	login := "never"
	if !a.LastLogin.IsZero() {
		login = TimeAgo(a.LastLogin.Time, now)
	}
	fmt.Fprintf(w, "%-12s  %-16s  %-11s  %-28s  last login %s\n", a.ID, a.Username, role, perms, login)
}

// FormatLeader formats a leaderboard row.
func FormatLeader(w io.Writer, rank int, u service.User) {
	fmt.Fprintf(w, "%3d. %-20s %6d pts  L%d\n", rank, u.DisplayName(), u.Points, u.Level())
}

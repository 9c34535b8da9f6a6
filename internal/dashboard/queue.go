package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"questctl/internal/service"
)

// Queue filters.
const (
	FilterAll      = "all"
	FilterTelegram = "telegram"
	FilterTwitter  = "twitter"
	FilterYouTube  = "youtube"
	FilterSocial   = "social"
	FilterHighXP   = "high-xp"
)

// HighXPThreshold is the smallest reward kept by FilterHighXP.
const HighXPThreshold = 100

var filterKeywords = map[string][]string{
	FilterTelegram: {"telegram", "chat"},
	FilterTwitter:  {"twitter", "follow"},
	FilterYouTube:  {"youtube", "watch"},
	FilterSocial:   {"social", "discord", "instagram"},
}

// ValidFilter reports whether f is a known queue filter.
func ValidFilter(f string) bool {
	_, ok := filterKeywords[f]
	return ok || f == FilterAll || f == FilterHighXP || f == ""
}

// FilterQueue keeps the submissions whose quest title or type mentions one
// of the filter's keywords. FilterHighXP keeps those worth at least
// HighXPThreshold points.
func FilterQueue(uts []service.UserTask, filter string) []service.UserTask {
	if filter == FilterHighXP {
		var out []service.UserTask
		for _, ut := range uts {
			if submissionPoints(ut) >= HighXPThreshold {
				out = append(out, ut)
			}
		}
		return out
	}
	keywords, ok := filterKeywords[filter]
	if !ok {
		return uts
	}
	var out []service.UserTask
	for _, ut := range uts {
		if ut.Task == nil {
			continue
		}
		text := strings.ToLower(ut.Task.Title + " " + ut.Task.TaskType)
		for _, k := range keywords {
			if strings.Contains(text, k) {
				out = append(out, ut)
				break
			}
		}
	}
	return out
}

// submissionPoints is the quest's reward, or the points recorded on the
// submission when the quest was not joined in.
func submissionPoints(ut service.UserTask) int {
	if ut.Task != nil {
		return ut.Task.PointsReward
	}
	return ut.PointsEarned
}

// BulkResult counts the outcome of a bulk verification.
type BulkResult struct {
	Success int
	Failed  int
	// Errors maps a failed user-task ID to its error.
	Errors map[string]error
}

// Summary is the operator-facing result line.
func (r BulkResult) Summary() string {
	s := fmt.Sprintf("Successfully processed %d quest submission(s)", r.Success)
	if r.Failed > 0 {
		s += fmt.Sprintf(", %d operation(s) failed", r.Failed)
	}
	return s + "."
}

// BulkVerify approves or rejects each submission in order. Failures are
// counted and do not stop the run; an unauthorized answer does, and is returned.
func BulkVerify(ctx context.Context, svc service.Service, log *zap.Logger, ids []string, approved bool, reason string) (BulkResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	res := BulkResult{Errors: map[string]error{}}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		err := svc.VerifyUserTask(ctx, id, approved, reason)
		switch {
		case err == nil:
			res.Success++
		case service.IsUnauthorized(err):
			return res, err
		default:
			res.Failed++
			res.Errors[id] = err
			log.Warn("verification failed", zap.String("user_task_id", id), zap.Error(err))
		}
	}
	return res, nil
}

// AdminSummary is the operator account counters.
type AdminSummary struct {
	Total       int
	ActiveToday int
	SuperAdmins int
}

// SummarizeAdmins counts accounts, logins within 24 hours and super admins.
func SummarizeAdmins(admins []service.Admin, now time.Time) AdminSummary {
	s := AdminSummary{Total: len(admins)}
	cutoff := now.Add(-24 * time.Hour)
	for _, a := range admins {
		if !a.LastLogin.IsZero() && a.LastLogin.After(cutoff) {
			s.ActiveToday++
		}
		if a.IsSuperAdmin {
			s.SuperAdmins++
		}
	}
	return s
}

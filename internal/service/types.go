// Package service defines the backend-agnostic interface for quest administration.
package service

import (
	"encoding/json"
	"strings"
	"time"
)

// Submission statuses for a UserTask.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
	StatusVerified   = "verified"
	StatusCompleted  = "completed"
	StatusRejected   = "rejected"
)

// Timestamp decodes the backend's ISO timestamps, which may or may not carry a zone.
// Zone-less values are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses s with each accepted layout in turn.
func ParseTimestamp(s string) (Timestamp, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Timestamp{t.UTC()}, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return Timestamp{}, firstErr
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// VerificationData is the per-quest configuration the classifier and the
// completion router read. Unset fields are omitted on the wire.
type VerificationData struct {
	Method     string `json:"method,omitempty" yaml:"method,omitempty"`
	ActionType string `json:"action_type,omitempty" yaml:"action_type,omitempty"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`

	// twitter
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	TweetID  string `json:"tweet_id,omitempty" yaml:"tweet_id,omitempty"`

	// telegram
	ChatID     string `json:"chat_id,omitempty" yaml:"chat_id,omitempty"`
	ChatName   string `json:"chat_name,omitempty" yaml:"chat_name,omitempty"`
	InviteLink string `json:"invite_link,omitempty" yaml:"invite_link,omitempty"`

	// youtube
	Code                string `json:"code,omitempty" yaml:"code,omitempty"`
	Hint                string `json:"hint,omitempty" yaml:"hint,omitempty"`
	CaseSensitive       *bool  `json:"case_sensitive,omitempty" yaml:"case_sensitive,omitempty"`
	MinWatchTimeSeconds int    `json:"min_watch_time_seconds,omitempty" yaml:"min_watch_time_seconds,omitempty"`
	CodeTimestamp       string `json:"code_timestamp,omitempty" yaml:"code_timestamp,omitempty"`
	MaxAttempts         int    `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	VideoTitle          string `json:"video_title,omitempty" yaml:"video_title,omitempty"`

	// social / website
	ActionDescription string `json:"action_description,omitempty" yaml:"action_description,omitempty"`
	TimerSeconds      int    `json:"timer_seconds,omitempty" yaml:"timer_seconds,omitempty"`

	// manual review
	Instructions     string `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	SubmissionType   string `json:"submission_type,omitempty" yaml:"submission_type,omitempty"`
	RequiresApproval *bool  `json:"requires_approval,omitempty" yaml:"requires_approval,omitempty"`

	// daily check-in
	StreakBonus         int    `json:"streak_bonus,omitempty" yaml:"streak_bonus,omitempty"`
	ResetTimeUTC        string `json:"reset_time_utc,omitempty" yaml:"reset_time_utc,omitempty"`
	ConsecutiveRequired int    `json:"consecutive_required,omitempty" yaml:"consecutive_required,omitempty"`
	Frequency           string `json:"frequency,omitempty" yaml:"frequency,omitempty"`
}

// IsZero reports whether no field is set.
func (v *VerificationData) IsZero() bool {
	return v == nil || *v == VerificationData{}
}

// Task is a quest definition.
type Task struct {
	ID                   string            `json:"id" yaml:"id"`
	Title                string            `json:"title" yaml:"title"`
	Description          string            `json:"description" yaml:"description"`
	TaskType             string            `json:"task_type" yaml:"task_type"`
	Platform             string            `json:"platform" yaml:"platform"`
	URL                  string            `json:"url" yaml:"url"`
	PointsReward         int               `json:"points_reward" yaml:"points_reward"`
	IsBonus              bool              `json:"is_bonus" yaml:"is_bonus"`
	IsActive             bool              `json:"is_active" yaml:"is_active"`
	MaxCompletions       *int              `json:"max_completions,omitempty" yaml:"max_completions,omitempty"`
	VerificationRequired bool              `json:"verification_required" yaml:"verification_required"`
	VerificationData     *VerificationData `json:"verification_data,omitempty" yaml:"verification_data,omitempty"`
	Completed            bool              `json:"completed,omitempty" yaml:"completed,omitempty"`
	CreatedAt            Timestamp         `json:"created_at" yaml:"-"`
}

// TaskInput is the create/update payload for a Task.
type TaskInput struct {
	Title                string            `json:"title"`
	Description          string            `json:"description"`
	TaskType             string            `json:"task_type"`
	Platform             string            `json:"platform"`
	URL                  string            `json:"url"`
	PointsReward         int               `json:"points_reward"`
	IsBonus              bool              `json:"is_bonus"`
	IsActive             bool              `json:"is_active"`
	VerificationRequired bool              `json:"verification_required"`
	VerificationData     *VerificationData `json:"verification_data,omitempty"`
}

// User is a Telegram user known to the backend.
type User struct {
	ID                string    `json:"id" yaml:"id"`
	TelegramID        int64     `json:"telegram_id" yaml:"telegram_id"`
	Username          string    `json:"username" yaml:"username"`
	FirstName         string    `json:"first_name" yaml:"first_name"`
	LastName          string    `json:"last_name" yaml:"last_name"`
	Points            int       `json:"points" yaml:"points"`
	TotalPointsEarned int       `json:"total_points_earned" yaml:"total_points_earned"`
	IsActive          bool      `json:"is_active" yaml:"is_active"`
	IsBanned          bool      `json:"is_banned" yaml:"is_banned"`
	CreatedAt         Timestamp `json:"created_at" yaml:"-"`
}

// Level is one level per hundred points earned, starting at 1.
func (u User) Level() int {
	return u.TotalPointsEarned/100 + 1
}

// DisplayName prefers the username, then the first name.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return "Anonymous"
}

// Reward is an item users can redeem points for.
type Reward struct {
	ID                string `json:"id" yaml:"id"`
	Title             string `json:"title" yaml:"title"`
	Description       string `json:"description" yaml:"description"`
	RewardType        string `json:"reward_type" yaml:"reward_type"`
	PointsCost        int    `json:"points_cost" yaml:"points_cost"`
	QuantityAvailable *int   `json:"quantity_available" yaml:"quantity_available"`
	QuantityClaimed   int    `json:"quantity_claimed" yaml:"quantity_claimed"`
	IsActive          bool   `json:"is_active" yaml:"is_active"`
	ImageURL          string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

// RewardInput is the create/update payload for a Reward.
type RewardInput struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	RewardType        string `json:"reward_type"`
	PointsCost        int    `json:"points_cost"`
	QuantityAvailable *int   `json:"quantity_available"`
	IsActive          bool   `json:"is_active"`
	ImageURL          string `json:"image_url,omitempty"`
}

// Input copies the editable fields of r.
func (r Reward) Input() RewardInput {
	return RewardInput{
		Title:             r.Title,
		Description:       r.Description,
		RewardType:        r.RewardType,
		PointsCost:        r.PointsCost,
		QuantityAvailable: r.QuantityAvailable,
		IsActive:          r.IsActive,
		ImageURL:          r.ImageURL,
	}
}

// UserTask is a user's submission against a Task.
type UserTask struct {
	ID             string    `json:"id" yaml:"id"`
	UserID         string    `json:"user_id" yaml:"user_id"`
	TaskID         string    `json:"task_id" yaml:"task_id"`
	Status         string    `json:"status" yaml:"status"`
	ProofURL       string    `json:"proof_url,omitempty" yaml:"proof_url,omitempty"`
	SubmissionText string    `json:"submission_text,omitempty" yaml:"submission_text,omitempty"`
	PointsEarned   int       `json:"points_earned" yaml:"points_earned"`
	CreatedAt      Timestamp `json:"created_at" yaml:"-"`
	User           *User     `json:"users,omitempty" yaml:"user,omitempty"`
	Task           *Task     `json:"tasks,omitempty" yaml:"task,omitempty"`
}

// Admin is a console operator account.
type Admin struct {
	ID           string      `json:"id" yaml:"id"`
	Username     string      `json:"username" yaml:"username"`
	Email        string      `json:"email,omitempty" yaml:"email,omitempty"`
	Role         string      `json:"role,omitempty" yaml:"role,omitempty"`
	IsSuperAdmin bool        `json:"is_super_admin" yaml:"is_super_admin"`
	IsActive     bool        `json:"is_active" yaml:"is_active"`
	Permissions  Permissions `json:"permissions" yaml:"permissions"`
	CreatedAt    Timestamp   `json:"created_at" yaml:"-"`
	LastLogin    Timestamp   `json:"last_login" yaml:"-"`
}

// Permissions decodes either a JSON array or a comma-separated string.
type Permissions []string

func (p *Permissions) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*p = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*p = nil
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*p = out
	return nil
}

// AdminInput is the create payload for an Admin.
type AdminInput struct {
	Username     string   `json:"username"`
	Password     string   `json:"password"`
	IsSuperAdmin bool     `json:"is_super_admin"`
	Permissions  []string `json:"permissions"`
}

// AdminStats is the backend's own summary counters.
type AdminStats struct {
	TotalUsers             int `json:"total_users" yaml:"total_users"`
	ActiveUsers            int `json:"active_users" yaml:"active_users"`
	TotalTasks             int `json:"total_tasks" yaml:"total_tasks"`
	CompletedTasks         int `json:"completed_tasks" yaml:"completed_tasks"`
	TotalPointsDistributed int `json:"total_points_distributed" yaml:"total_points_distributed"`
	RewardsRedeemed        int `json:"rewards_redeemed" yaml:"rewards_redeemed"`
}

// StatusSection is one server's entry in a status snapshot.
type StatusSection struct {
	Status    string   `json:"status" yaml:"status"`
	Message   string   `json:"message,omitempty" yaml:"message,omitempty"`
	PortLabel string   `json:"port_label,omitempty" yaml:"port_label,omitempty"`
	LatencyMS *float64 `json:"latency_ms,omitempty" yaml:"latency_ms,omitempty"`
	Detail    string   `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// StatusSnapshot is the response of the server status endpoint.
type StatusSnapshot struct {
	API      *StatusSection `json:"api" yaml:"api"`
	Database *StatusSection `json:"database" yaml:"database"`
}

// Credentials are the login form fields.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccessToken is the login response.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Video describes a YouTube video referenced by a quest.
type Video struct {
	ID           string
	Title        string
	ChannelTitle string
	Duration     string
}

// Package service defines the backend-agnostic interface for quest administration.
package service

import (
	"context"
	"time"
)

// Service defines the admin operations against the quest backend.
// All REST calls go through this interface.
// Commands never build HTTP requests directly.
type Service interface {
	// ListUsers returns every known user.
	ListUsers(ctx context.Context) ([]User, error)

	// ProbeUsers fetches a single user and reports the round-trip time.
	ProbeUsers(ctx context.Context, timeout time.Duration) (time.Duration, error)

	// ToggleBan flips the banned flag of a user.
	ToggleBan(ctx context.Context, userID string) error

	// ListTasks returns quests. With activeOnly false inactive quests are included.
	ListTasks(ctx context.Context, activeOnly bool) ([]Task, error)

	// GetTask returns a single quest.
	GetTask(ctx context.Context, id string) (Task, error)

	// CreateTask creates a quest.
	CreateTask(ctx context.Context, in TaskInput) (Task, error)

	// UpdateTask replaces a quest's editable fields.
	UpdateTask(ctx context.Context, id string, in TaskInput) (Task, error)

	// DeleteTask removes a quest.
	DeleteTask(ctx context.Context, id string) error

	// ToggleTask flips the active flag of a quest.
	ToggleTask(ctx context.Context, id string) error

	// ListRewards returns rewards, including inactive ones.
	ListRewards(ctx context.Context) ([]Reward, error)

	// CreateReward creates a reward.
	CreateReward(ctx context.Context, in RewardInput) (Reward, error)

	// UpdateReward replaces a reward's editable fields.
	UpdateReward(ctx context.Context, id string, in RewardInput) (Reward, error)

	// ListUserTasks returns submissions, filtered by status when status is non-empty.
	ListUserTasks(ctx context.Context, status string) ([]UserTask, error)

	// VerifyUserTask approves or rejects a submission. reason may be empty.
	VerifyUserTask(ctx context.Context, id string, approved bool, reason string) error

	// ListAdmins returns console operator accounts.
	ListAdmins(ctx context.Context) ([]Admin, error)

	// CreateAdmin creates an operator account.
	CreateAdmin(ctx context.Context, in AdminInput) error

	// DeleteAdmin removes an operator account.
	DeleteAdmin(ctx context.Context, id string) error

	// Leaderboard returns the top users by points, best first.
	Leaderboard(ctx context.Context, limit int) ([]User, error)

	// Stats returns the backend's summary counters.
	Stats(ctx context.Context) (AdminStats, error)

	// ServerStatus queries the status endpoint.
	// Returns ErrNotFound when the backend does not provide it.
	ServerStatus(ctx context.Context, timeout time.Duration) (StatusSnapshot, error)

	// Health queries the legacy health endpoint.
	Health(ctx context.Context, timeout time.Duration) error
}

// Authenticator exchanges credentials for an access token.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (AccessToken, error)
}

// VideoResolver looks up metadata for a YouTube video URL.
type VideoResolver interface {
	ResolveVideo(ctx context.Context, url string) (Video, error)
}

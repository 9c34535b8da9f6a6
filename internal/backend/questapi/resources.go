package questapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"questctl/internal/service"
)

func escape(id string) string {
	return url.PathEscape(id)
}

// ListUsers returns every known user.
func (c *Client) ListUsers(ctx context.Context) ([]service.User, error) {
	var users []service.User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users", out: &users}); err != nil {
		return nil, err
	}
	return users, nil
}

// ProbeUsers times a one-row user fetch. Only transport failures count as
// errors; any HTTP answer proves the API is reachable.
func (c *Client) ProbeUsers(ctx context.Context, timeout time.Duration) (time.Duration, error) {
	start := time.Now()
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/users",
		query:   url.Values{"limit": {"1"}},
		timeout: timeout,
	})
	elapsed := time.Since(start)

	var apiErr *service.APIError
	switch {
	case err == nil,
		errors.As(err, &apiErr),
		errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrNotFound):
		return elapsed, nil
	}
	return elapsed, err
}

// ToggleBan flips the banned flag of a user.
func (c *Client) ToggleBan(ctx context.Context, userID string) error {
	return c.do(ctx, request{method: http.MethodPut, path: "/admin/users/" + escape(userID) + "/ban"})
}

// ListTasks returns quests.
func (c *Client) ListTasks(ctx context.Context, activeOnly bool) ([]service.Task, error) {
	r := request{method: http.MethodGet, path: "/tasks"}
	if !activeOnly {
		r.query = url.Values{"active_only": {"false"}}
	}
	var tasks []service.Task
	r.out = &tasks
	if err := c.do(ctx, r); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns a single quest.
func (c *Client) GetTask(ctx context.Context, id string) (service.Task, error) {
	var t service.Task
	err := c.do(ctx, request{method: http.MethodGet, path: "/tasks/" + escape(id), out: &t})
	return t, err
}

// CreateTask creates a quest.
func (c *Client) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	in = normalizeTaskInput(in)
	var t service.Task
	err := c.do(ctx, request{method: http.MethodPost, path: "/tasks", body: in, out: &t})
	return t, err
}

// UpdateTask replaces a quest's editable fields.
func (c *Client) UpdateTask(ctx context.Context, id string, in service.TaskInput) (service.Task, error) {
	in = normalizeTaskInput(in)
	var t service.Task
	err := c.do(ctx, request{method: http.MethodPut, path: "/tasks/" + escape(id), body: in, out: &t})
	return t, err
}

// normalizeTaskInput drops an empty verification_data object from the payload.
func normalizeTaskInput(in service.TaskInput) service.TaskInput {
	if in.VerificationData.IsZero() {
		in.VerificationData = nil
	}
	return in
}

// DeleteTask removes a quest.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/tasks/" + escape(id)})
}

// ToggleTask flips the active flag of a quest.
func (c *Client) ToggleTask(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodPatch, path: "/tasks/" + escape(id) + "/toggle"})
}

// ListRewards returns all rewards, including inactive ones.
func (c *Client) ListRewards(ctx context.Context) ([]service.Reward, error) {
	var rewards []service.Reward
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/rewards",
		query:  url.Values{"active_only": {"false"}},
		out:    &rewards,
	})
	if err != nil {
		return nil, err
	}
	return rewards, nil
}

// CreateReward creates a reward.
func (c *Client) CreateReward(ctx context.Context, in service.RewardInput) (service.Reward, error) {
	var r service.Reward
	err := c.do(ctx, request{method: http.MethodPost, path: "/rewards", body: in, out: &r})
	return r, err
}

// UpdateReward replaces a reward's editable fields.
func (c *Client) UpdateReward(ctx context.Context, id string, in service.RewardInput) (service.Reward, error) {
	var r service.Reward
	err := c.do(ctx, request{method: http.MethodPut, path: "/rewards/" + escape(id), body: in, out: &r})
	return r, err
}

// ListUserTasks returns submissions, newest first.
func (c *Client) ListUserTasks(ctx context.Context, status string) ([]service.UserTask, error) {
	r := request{method: http.MethodGet, path: "/admin/user-tasks"}
	if status != "" {
		r.query = url.Values{"status": {status}}
	}
	var uts []service.UserTask
	r.out = &uts
	if err := c.do(ctx, r); err != nil {
		return nil, err
	}
	return uts, nil
}

type verifyBody struct {
	Reason string `json:"reason"`
}

// VerifyUserTask approves or rejects a submission. The reason body is only
// sent when there is one.
func (c *Client) VerifyUserTask(ctx context.Context, id string, approved bool, reason string) error {
	r := request{
		method: http.MethodPut,
		path:   "/admin/user-tasks/" + escape(id) + "/verify",
		query:  url.Values{"approved": {strconv.FormatBool(approved)}},
	}
	if reason != "" {
		r.body = verifyBody{Reason: reason}
	}
	return c.do(ctx, r)
}

// ListAdmins returns operator accounts.
func (c *Client) ListAdmins(ctx context.Context) ([]service.Admin, error) {
	var admins []service.Admin
	if err := c.do(ctx, request{method: http.MethodGet, path: "/admin/users", out: &admins}); err != nil {
		return nil, err
	}
	return admins, nil
}

// CreateAdmin creates an operator account.
func (c *Client) CreateAdmin(ctx context.Context, in service.AdminInput) error {
	if in.Permissions == nil {
		in.Permissions = []string{}
	}
	return c.do(ctx, request{method: http.MethodPost, path: "/admin/create-admin", body: in})
}

// DeleteAdmin removes an operator account.
func (c *Client) DeleteAdmin(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/admin/delete-admin/" + escape(id)})
}

// Leaderboard returns the top users by points.
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]service.User, error) {
	var users []service.User
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/leaderboard",
		query:  url.Values{"limit": {strconv.Itoa(limit)}},
		out:    &users,
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Stats returns the backend's summary counters.
func (c *Client) Stats(ctx context.Context) (service.AdminStats, error) {
	var s service.AdminStats
	err := c.do(ctx, request{method: http.MethodGet, path: "/admin/stats", out: &s})
	return s, err
}

// ServerStatus queries the status endpoint.
func (c *Client) ServerStatus(ctx context.Context, timeout time.Duration) (service.StatusSnapshot, error) {
	var snap service.StatusSnapshot
	err := c.do(ctx, request{method: http.MethodGet, path: "/status/servers", out: &snap, timeout: timeout})
	return snap, err
}

// Health queries the legacy health endpoint.
func (c *Client) Health(ctx context.Context, timeout time.Duration) error {
	return c.do(ctx, request{method: http.MethodGet, path: "/health", timeout: timeout})
}

var _ service.Service = (*Client)(nil)

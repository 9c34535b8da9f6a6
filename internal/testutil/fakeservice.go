// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"questctl/internal/service"
)

// Verification is one recorded VerifyUserTask call.
type Verification struct {
	ID       string
	Approved bool
	Reason   string
}

// FakeService is an in-memory implementation of service.Service for testing.
// Error fields are read without locking; set them before the code under test runs.
type FakeService struct {
	mu            sync.RWMutex
	users         []service.User
	tasks         []service.Task
	rewards       []service.Reward
	userTasks     []service.UserTask
	admins        []service.Admin
	status        *service.StatusSnapshot
	verifications []Verification
	calls         map[string]int
	nextID        int

	// ProbeLatency is reported by ProbeUsers.
	ProbeLatency time.Duration

	// Error injection for testing
	ListUsersErr     error
	ProbeErr         error
	ToggleBanErr     error
	ListTasksErr     error
	GetTaskErr       error
	CreateTaskErr    error
	UpdateTaskErr    error
	DeleteTaskErr    error
	ToggleTaskErr    error
	ListRewardsErr   error
	CreateRewardErr  error
	UpdateRewardErr  error
	ListUserTasksErr map[string]error // status filter ("" = all) -> error
	VerifyErr        map[string]error // user-task ID -> error
	ListAdminsErr    error
	CreateAdminErr   error
	DeleteAdminErr   error
	LeaderboardErr   error
	StatsErr         error
	ServerStatusErr  error
	HealthErr        error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		calls:            make(map[string]int),
		ListUserTasksErr: make(map[string]error),
		VerifyErr:        make(map[string]error),
	}
}

func (f *FakeService) called(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

// Calls returns how many times the named method ran.
func (f *FakeService) Calls(name string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[name]
}

func (f *FakeService) id() string {
	f.nextID++
	return "fake-" + strconv.Itoa(f.nextID)
}

// AddUser adds a user.
func (f *FakeService) AddUser(u service.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, u)
}

// AddTask adds a task.
func (f *FakeService) AddTask(t service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t)
}

// AddReward adds a reward.
func (f *FakeService) AddReward(r service.Reward) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rewards = append(f.rewards, r)
}

// AddUserTask adds a submission.
func (f *FakeService) AddUserTask(ut service.UserTask) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userTasks = append(f.userTasks, ut)
}

// AddAdmin adds an operator account.
func (f *FakeService) AddAdmin(a service.Admin) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admins = append(f.admins, a)
}

// SetStatus sets the snapshot served by ServerStatus. Nil answers ErrNotFound.
func (f *FakeService) SetStatus(s *service.StatusSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Task(nil), f.tasks...)
}

// Rewards returns a copy of the stored rewards.
func (f *FakeService) Rewards() []service.Reward {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Reward(nil), f.rewards...)
}

// Users returns a copy of the stored users.
func (f *FakeService) Users() []service.User {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.User(nil), f.users...)
}

// Admins returns a copy of the stored admins.
func (f *FakeService) Admins() []service.Admin {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Admin(nil), f.admins...)
}

// Verifications returns the recorded VerifyUserTask calls in order.
func (f *FakeService) Verifications() []Verification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Verification(nil), f.verifications...)
}

// ListUsers implements service.Service.
func (f *FakeService) ListUsers(ctx context.Context) ([]service.User, error) {
	f.called("ListUsers")
	if f.ListUsersErr != nil {
		return nil, f.ListUsersErr
	}
	return f.Users(), nil
}

// ProbeUsers implements service.Service.
func (f *FakeService) ProbeUsers(ctx context.Context, timeout time.Duration) (time.Duration, error) {
	f.called("ProbeUsers")
	if f.ProbeErr != nil {
		return 0, f.ProbeErr
	}
	return f.ProbeLatency, nil
}

// ToggleBan implements service.Service.
func (f *FakeService) ToggleBan(ctx context.Context, userID string) error {
	f.called("ToggleBan")
	if f.ToggleBanErr != nil {
		return f.ToggleBanErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID == userID {
			f.users[i].IsBanned = !f.users[i].IsBanned
			return nil
		}
	}
	return service.ErrNotFound
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, activeOnly bool) ([]service.Task, error) {
	f.called("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []service.Task
	for _, t := range f.tasks {
		if activeOnly && !t.IsActive {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *FakeService) findTask(id string) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id string) (service.Task, error) {
	f.called("GetTask")
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if i := f.findTask(id); i >= 0 {
		return f.tasks[i], nil
	}
	return service.Task{}, service.ErrNotFound
}

func applyTaskInput(t *service.Task, in service.TaskInput) {
	t.Title = in.Title
	t.Description = in.Description
	t.TaskType = in.TaskType
	t.Platform = in.Platform
	t.URL = in.URL
	t.PointsReward = in.PointsReward
	t.IsBonus = in.IsBonus
	t.IsActive = in.IsActive
	t.VerificationRequired = in.VerificationRequired
	t.VerificationData = in.VerificationData
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	f.called("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{ID: f.id()}
	applyTaskInput(&t, in)
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, in service.TaskInput) (service.Task, error) {
	f.called("UpdateTask")
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findTask(id)
	if i < 0 {
		return service.Task{}, service.ErrNotFound
	}
	applyTaskInput(&f.tasks[i], in)
	return f.tasks[i], nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.called("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findTask(id)
	if i < 0 {
		return service.ErrNotFound
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}

// ToggleTask implements service.Service.
func (f *FakeService) ToggleTask(ctx context.Context, id string) error {
	f.called("ToggleTask")
	if f.ToggleTaskErr != nil {
		return f.ToggleTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findTask(id)
	if i < 0 {
		return service.ErrNotFound
	}
	f.tasks[i].IsActive = !f.tasks[i].IsActive
	return nil
}

// ListRewards implements service.Service.
func (f *FakeService) ListRewards(ctx context.Context) ([]service.Reward, error) {
	f.called("ListRewards")
	if f.ListRewardsErr != nil {
		return nil, f.ListRewardsErr
	}
	return f.Rewards(), nil
}

func applyRewardInput(r *service.Reward, in service.RewardInput) {
	r.Title = in.Title
	r.Description = in.Description
	r.RewardType = in.RewardType
	r.PointsCost = in.PointsCost
	r.QuantityAvailable = in.QuantityAvailable
	r.IsActive = in.IsActive
	r.ImageURL = in.ImageURL
}

// CreateReward implements service.Service.
func (f *FakeService) CreateReward(ctx context.Context, in service.RewardInput) (service.Reward, error) {
	f.called("CreateReward")
	if f.CreateRewardErr != nil {
		return service.Reward{}, f.CreateRewardErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r := service.Reward{ID: f.id()}
	applyRewardInput(&r, in)
	f.rewards = append(f.rewards, r)
	return r, nil
}

// UpdateReward implements service.Service.
func (f *FakeService) UpdateReward(ctx context.Context, id string, in service.RewardInput) (service.Reward, error) {
	f.called("UpdateReward")
	if f.UpdateRewardErr != nil {
		return service.Reward{}, f.UpdateRewardErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rewards {
		if f.rewards[i].ID == id {
			applyRewardInput(&f.rewards[i], in)
			return f.rewards[i], nil
		}
	}
	return service.Reward{}, service.ErrNotFound
}

// ListUserTasks implements service.Service. Results are newest first.
func (f *FakeService) ListUserTasks(ctx context.Context, status string) ([]service.UserTask, error) {
	f.called("ListUserTasks")
	if err := f.ListUserTasksErr[status]; err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []service.UserTask
	for _, ut := range f.userTasks {
		if status != "" && ut.Status != status {
			continue
		}
		out = append(out, ut)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt.Time)
	})
	return out, nil
}

// VerifyUserTask implements service.Service.
func (f *FakeService) VerifyUserTask(ctx context.Context, id string, approved bool, reason string) error {
	f.called("VerifyUserTask")
	if err := f.VerifyErr[id]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.userTasks {
		if f.userTasks[i].ID != id {
			continue
		}
		f.verifications = append(f.verifications, Verification{ID: id, Approved: approved, Reason: reason})
		if approved {
			f.userTasks[i].Status = service.StatusCompleted
		} else {
			f.userTasks[i].Status = service.StatusRejected
		}
		return nil
	}
	return service.ErrNotFound
}

// ListAdmins implements service.Service.
func (f *FakeService) ListAdmins(ctx context.Context) ([]service.Admin, error) {
	f.called("ListAdmins")
	if f.ListAdminsErr != nil {
		return nil, f.ListAdminsErr
	}
	return f.Admins(), nil
}

// CreateAdmin implements service.Service.
func (f *FakeService) CreateAdmin(ctx context.Context, in service.AdminInput) error {
	f.called("CreateAdmin")
	if f.CreateAdminErr != nil {
		return f.CreateAdminErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Username == in.Username {
			return &service.APIError{Status: 400, Detail: "Username already exists"}
		}
	}
	f.admins = append(f.admins, service.Admin{
		ID:           f.id(),
		Username:     in.Username,
		IsSuperAdmin: in.IsSuperAdmin,
		IsActive:     true,
		Permissions:  in.Permissions,
	})
	return nil
}

// DeleteAdmin implements service.Service.
func (f *FakeService) DeleteAdmin(ctx context.Context, id string) error {
	f.called("DeleteAdmin")
	if f.DeleteAdminErr != nil {
		return f.DeleteAdminErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.admins {
		if a.ID == id {
			f.admins = append(f.admins[:i], f.admins[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

// Leaderboard implements service.Service.
func (f *FakeService) Leaderboard(ctx context.Context, limit int) ([]service.User, error) {
	f.called("Leaderboard")
	if f.LeaderboardErr != nil {
		return nil, f.LeaderboardErr
	}
	users := f.Users()
	sort.SliceStable(users, func(i, j int) bool { return users[i].Points > users[j].Points })
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// Stats implements service.Service.
func (f *FakeService) Stats(ctx context.Context) (service.AdminStats, error) {
	f.called("Stats")
	if f.StatsErr != nil {
		return service.AdminStats{}, f.StatsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	s := service.AdminStats{TotalUsers: len(f.users), TotalTasks: len(f.tasks)}
	for _, ut := range f.userTasks {
		if ut.Status == service.StatusCompleted {
			s.CompletedTasks++
			s.TotalPointsDistributed += ut.PointsEarned
		}
	}
	return s, nil
}

// ServerStatus implements service.Service.
func (f *FakeService) ServerStatus(ctx context.Context, timeout time.Duration) (service.StatusSnapshot, error) {
	f.called("ServerStatus")
	if f.ServerStatusErr != nil {
		return service.StatusSnapshot{}, f.ServerStatusErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.status == nil {
		return service.StatusSnapshot{}, service.ErrNotFound
	}
	return *f.status, nil
}

// Health implements service.Service.
func (f *FakeService) Health(ctx context.Context, timeout time.Duration) error {
	f.called("Health")
	return f.HealthErr
}

var _ service.Service = (*FakeService)(nil)

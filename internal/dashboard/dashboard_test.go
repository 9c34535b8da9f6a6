package dashboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questctl/internal/dashboard"
	"questctl/internal/service"
	"questctl/internal/store"
	"questctl/internal/testutil"
)

func seeded() *testutil.FakeService {
	f := testutil.NewFakeService()
	f.AddUser(service.User{ID: "u1", Username: "alice", Points: 120})
	f.AddUser(service.User{ID: "u2", Username: "bob"})
	f.AddUser(service.User{ID: "u3", Username: "carol", Points: 5})
	f.AddTask(service.Task{ID: "t1", Title: "Join chat", IsActive: true})
	f.AddTask(service.Task{ID: "t2", Title: "Old quest"})
	f.AddReward(service.Reward{ID: "r1", IsActive: true})
	f.AddUserTask(service.UserTask{ID: "ut1", Status: service.StatusSubmitted})
	f.AddUserTask(service.UserTask{ID: "ut2", Status: service.StatusCompleted})
	return f
}

func TestLoader_Load(t *testing.T) {
	f := seeded()
	l := &dashboard.Loader{Service: f}

	s, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dashboard.Stats{
		ActiveUsers:      2,
		TotalUsers:       3,
		ActiveTasks:      1,
		ActiveRewards:    1,
		Pending:          1,
		TotalSubmissions: 2,
	}, s)
	assert.Equal(t, 2, f.Calls("ListUserTasks"))
}

func TestLoader_FailedCollectionCountsAsEmpty(t *testing.T) {
	f := seeded()
	f.ListRewardsErr = &service.APIError{Status: 500, Detail: "boom"}
	f.ListUserTasksErr[service.StatusSubmitted] = errors.New("network down")

	s, err := (&dashboard.Loader{Service: f}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, s.ActiveRewards)
	assert.Equal(t, 0, s.Pending)
	assert.Equal(t, 3, s.TotalUsers)
}

func TestLoader_UnauthorizedExpiresOnce(t *testing.T) {
	f := seeded()
	f.ListUsersErr = service.ErrUnauthorized
	f.ListTasksErr = service.ErrUnauthorized

	expired := 0
	l := &dashboard.Loader{Service: f, OnUnauthorized: func() { expired++ }}
	_, err := l.Load(context.Background())
	assert.ErrorIs(t, err, service.ErrUnauthorized)
	assert.Equal(t, 1, expired)
}

func TestBadges(t *testing.T) {
	tests := []struct {
		stats                dashboard.Stats
		pending, quest, loot string
	}{
		{dashboard.Stats{}, "CLEAR", "LIVE", "CATALOG"},
		{dashboard.Stats{Pending: 5, ActiveTasks: 10, ActiveRewards: 5}, "PENDING", "LIVE", "CATALOG"},
		{dashboard.Stats{Pending: 6, ActiveTasks: 11, ActiveRewards: 6}, "HIGH", "ACTIVE", "STOCKED"},
		{dashboard.Stats{Pending: 11, ActiveTasks: 16, ActiveRewards: 11}, "URGENT", "HOT", "FULL"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.pending, tt.stats.PendingBadge())
		assert.Equal(t, tt.quest, tt.stats.QuestBadge())
		assert.Equal(t, tt.loot, tt.stats.LootBadge())
	}
}

func TestProbe(t *testing.T) {
	f := testutil.NewFakeService()

	f.ProbeLatency = 120 * time.Millisecond
	p := dashboard.Probe(context.Background(), f, time.Second)
	assert.Equal(t, dashboard.PerfOptimal, p.Grade)
	assert.Equal(t, "120ms", p.Detail())

	f.ProbeLatency = 700 * time.Millisecond
	assert.Equal(t, dashboard.PerfGood, dashboard.Probe(context.Background(), f, time.Second).Grade)

	f.ProbeLatency = 1500 * time.Millisecond
	assert.Equal(t, dashboard.PerfSlow, dashboard.Probe(context.Background(), f, time.Second).Grade)

	f.ProbeErr = context.DeadlineExceeded
	p = dashboard.Probe(context.Background(), f, time.Second)
	assert.Equal(t, dashboard.PerfError, p.Grade)
	assert.Equal(t, "Check Failed", p.Detail())
}

func TestGradeBoundaries(t *testing.T) {
	assert.Equal(t, dashboard.PerfOptimal, dashboard.Grade(499*time.Millisecond))
	assert.Equal(t, dashboard.PerfGood, dashboard.Grade(500*time.Millisecond))
	assert.Equal(t, dashboard.PerfSlow, dashboard.Grade(time.Second))
}

func TestMapState(t *testing.T) {
	for in, want := range map[string]string{
		"running":   dashboard.StateOK,
		"Connected": dashboard.StateOK,
		"ok":        dashboard.StateOK,
		"degraded":  dashboard.StateWarn,
		"warning":   dashboard.StateWarn,
		"":          dashboard.StateWarn,
		"down":      dashboard.StateError,
	} {
		assert.Equal(t, want, dashboard.MapState(in), in)
	}
}

func TestComposeDetail(t *testing.T) {
	ms := 12.5
	assert.Equal(t, "Port 9000 · 12.5ms · pool ok",
		dashboard.ComposeDetail(&service.StatusSection{PortLabel: "Port 9000", LatencyMS: &ms, Detail: "pool ok"}, "Port 8080"))
	assert.Equal(t, "Port 8080", dashboard.ComposeDetail(&service.StatusSection{}, "Port 8080"))
	assert.Equal(t, "", dashboard.ComposeDetail(&service.StatusSection{}, ""))
}

func TestStatusChecker_Snapshot(t *testing.T) {
	f := testutil.NewFakeService()
	ms := 3.0
	f.SetStatus(&service.StatusSnapshot{
		API: &service.StatusSection{Status: "running", LatencyMS: &ms},
	})
	st := &store.MemStateStore{}
	c := &dashboard.StatusChecker{Service: f, State: st}

	got := c.Check(context.Background())
	assert.False(t, got.Legacy)
	assert.Equal(t, dashboard.ServerLine{State: dashboard.StateOK, Text: "RUNNING", Detail: "Port 8080 · 3ms"}, got.API)
	// A missing section reads as an empty one.
	assert.Equal(t, dashboard.ServerLine{State: dashboard.StateWarn, Text: "CONNECTED", Detail: "PostgreSQL"}, got.Database)

	saved, err := st.Load()
	require.NoError(t, err)
	require.NotNil(t, saved.StatusEndpointSupported)
	assert.True(t, *saved.StatusEndpointSupported)
	assert.Equal(t, 0, f.Calls("Health"))
}

func TestStatusChecker_FallsBackAndRemembers(t *testing.T) {
	f := testutil.NewFakeService()
	st := &store.MemStateStore{}
	c := &dashboard.StatusChecker{Service: f, State: st}

	got := c.Check(context.Background())
	assert.True(t, got.Legacy)
	assert.Equal(t, dashboard.ServerLine{State: dashboard.StateOK, Text: "RUNNING", Detail: "Port 8080"}, got.API)
	assert.Equal(t, dashboard.ServerLine{State: dashboard.StateOK, Text: "CONNECTED", Detail: "PostgreSQL"}, got.Database)
	assert.Equal(t, 1, f.Calls("ServerStatus"))
	assert.Equal(t, 2, f.Calls("Health"))

	// The endpoint is not asked again once known to be missing.
	f.HealthErr = errors.New("connection refused")
	got = c.Check(context.Background())
	assert.Equal(t, 1, f.Calls("ServerStatus"))
	assert.Equal(t, "OFFLINE", got.API.Text)
	assert.Equal(t, dashboard.StateError, got.Database.State)
}

// slowStatus answers ServerStatus after delay, or with the context error
// if ctx ends first.
type slowStatus struct {
	*testutil.FakeService
	delay time.Duration
}

func (s slowStatus) ServerStatus(ctx context.Context, timeout time.Duration) (service.StatusSnapshot, error) {
	select {
	case <-ctx.Done():
		return service.StatusSnapshot{}, ctx.Err()
	case <-time.After(s.delay):
		return service.StatusSnapshot{API: &service.StatusSection{Status: "running"}}, nil
	}
}

func TestStatusChecker_CancelledCheckIsNotRemembered(t *testing.T) {
	st := &store.MemStateStore{}
	c := &dashboard.StatusChecker{Service: slowStatus{FakeService: testutil.NewFakeService(), delay: time.Minute}, State: st}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	got := c.Check(ctx)
	assert.True(t, got.Legacy)

	saved, err := st.Load()
	require.NoError(t, err)
	assert.Nil(t, saved.StatusEndpointSupported)
	assert.False(t, saved.StatusEndpointDisabled())
}

func TestCollector_UnauthorizedDoesNotDisableStatusEndpoint(t *testing.T) {
	f := seeded()
	f.ListUsersErr = service.ErrUnauthorized
	st := &store.MemStateStore{}
	svc := slowStatus{FakeService: f, delay: 50 * time.Millisecond}
	c := &dashboard.Collector{
		Loader: &dashboard.Loader{Service: svc},
		Status: &dashboard.StatusChecker{Service: svc, State: st},
	}

	_, err := c.Collect(context.Background())
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	saved, err := st.Load()
	require.NoError(t, err)
	assert.False(t, saved.StatusEndpointDisabled())
}

func TestFilterQueue(t *testing.T) {
	uts := []service.UserTask{
		{ID: "1", Task: &service.Task{Title: "Join our Telegram", TaskType: "social"}},
		{ID: "2", Task: &service.Task{Title: "Follow us", TaskType: "social"}},
		{ID: "3", Task: &service.Task{Title: "Watch the video", TaskType: "youtube"}},
		{ID: "4", Task: &service.Task{Title: "Read blog", TaskType: "website"}},
		{ID: "5", PointsEarned: 150},
		{ID: "6", Task: &service.Task{Title: "Epic raid", TaskType: "manual", PointsReward: 100}},
	}
	ids := func(in []service.UserTask) []string {
		var out []string
		for _, ut := range in {
			out = append(out, ut.ID)
		}
		return out
	}

	assert.Equal(t, []string{"1"}, ids(dashboard.FilterQueue(uts, dashboard.FilterTelegram)))
	assert.Equal(t, []string{"2"}, ids(dashboard.FilterQueue(uts, dashboard.FilterTwitter)))
	assert.Equal(t, []string{"3"}, ids(dashboard.FilterQueue(uts, dashboard.FilterYouTube)))
	assert.Equal(t, []string{"1", "2"}, ids(dashboard.FilterQueue(uts, dashboard.FilterSocial)))
	assert.Equal(t, []string{"5", "6"}, ids(dashboard.FilterQueue(uts, dashboard.FilterHighXP)))
	assert.Len(t, dashboard.FilterQueue(uts, dashboard.FilterAll), 6)

	assert.True(t, dashboard.ValidFilter("youtube"))
	assert.True(t, dashboard.ValidFilter("high-xp"))
	assert.True(t, dashboard.ValidFilter(""))
	assert.False(t, dashboard.ValidFilter("tiktok"))
}

func TestBulkVerify(t *testing.T) {
	f := testutil.NewFakeService()
	f.AddUserTask(service.UserTask{ID: "a", Status: service.StatusSubmitted})
	f.AddUserTask(service.UserTask{ID: "b", Status: service.StatusSubmitted})
	f.VerifyErr["b"] = &service.APIError{Status: 500}

	res, err := dashboard.BulkVerify(context.Background(), f, nil, []string{"a", "b", "missing"}, true, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Success)
	assert.Equal(t, 2, res.Failed)
	assert.Contains(t, res.Errors, "b")
	assert.Equal(t, "Successfully processed 1 quest submission(s), 2 operation(s) failed.", res.Summary())
	assert.Equal(t, []testutil.Verification{{ID: "a", Approved: true}}, f.Verifications())
}

func TestBulkVerify_StopsOnUnauthorized(t *testing.T) {
	f := testutil.NewFakeService()
	f.AddUserTask(service.UserTask{ID: "a"})
	f.VerifyErr["a"] = service.ErrUnauthorized

	res, err := dashboard.BulkVerify(context.Background(), f, nil, []string{"a", "b"}, false, "spam")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
	assert.Equal(t, 0, res.Success+res.Failed)
	assert.Equal(t, 1, f.Calls("VerifyUserTask"))
}

func TestBulkResult_SummaryWithoutFailures(t *testing.T) {
	assert.Equal(t, "Successfully processed 3 quest submission(s).", dashboard.BulkResult{Success: 3}.Summary())
}

func TestSummarizeAdmins(t *testing.T) {
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	admins := []service.Admin{
		{Username: "root", IsSuperAdmin: true, LastLogin: service.Timestamp{Time: now.Add(-time.Hour)}},
		{Username: "mod", LastLogin: service.Timestamp{Time: now.Add(-48 * time.Hour)}},
		{Username: "new"},
	}
	assert.Equal(t, dashboard.AdminSummary{Total: 3, ActiveToday: 1, SuperAdmins: 1}, dashboard.SummarizeAdmins(admins, now))
}

func TestCollector_Collect(t *testing.T) {
	f := seeded()
	f.ProbeLatency = 40 * time.Millisecond
	at := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	c := &dashboard.Collector{
		Loader: &dashboard.Loader{Service: f},
		Status: &dashboard.StatusChecker{Service: f, State: &store.MemStateStore{}},
		Now:    func() time.Time { return at },
	}

	snap, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Stats.TotalUsers)
	assert.Equal(t, dashboard.PerfOptimal, snap.Performance.Grade)
	assert.True(t, snap.Servers.Legacy)
	assert.Equal(t, at, snap.At)
}

func TestCollector_Unauthorized(t *testing.T) {
	f := seeded()
	f.ListRewardsErr = service.ErrUnauthorized
	c := &dashboard.Collector{
		Loader: &dashboard.Loader{Service: f},
		Status: &dashboard.StatusChecker{Service: f, State: &store.MemStateStore{}},
	}

	_, err := c.Collect(context.Background())
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"questctl/internal/config"
	"questctl/internal/dashboard"
	"questctl/internal/exitcode"
	"questctl/internal/output"
	"questctl/internal/poll"
	"questctl/internal/service"
	"questctl/internal/session"
	"questctl/internal/store"
	"questctl/internal/ui"
)

func init() {
	Register(&DashboardCmd{})
	Register(&StatusCmd{})
	Register(&StatsCmd{})
}

func newStatusChecker(cfg *config.Config, svc service.Service) *dashboard.StatusChecker {
	return &dashboard.StatusChecker{
		Service:       svc,
		State:         store.NewFileStateStore(cfg.StatePath()),
		Logger:        cfg.Log(),
		StatusTimeout: cfg.Settings.StatusTimeout,
		HealthTimeout: cfg.Settings.HealthTimeout,
	}
}

func newCollector(cfg *config.Config, svc service.Service, expirer *session.Expirer) *dashboard.Collector {
	return &dashboard.Collector{
		Loader: &dashboard.Loader{
			Service:        svc,
			Logger:         cfg.Log(),
			OnUnauthorized: expirer.Expire,
		},
		Status:       newStatusChecker(cfg, svc),
		ProbeTimeout: cfg.Settings.ProbeTimeout,
		Logger:       cfg.Log(),
		Now:          now,
	}
}

// DashboardCmd implements the dashboard command.
// It is also what a bare `questctl` runs once logged in.
type DashboardCmd struct {
	watch bool
}

func (c *DashboardCmd) Name() string      { return "dashboard" }
func (c *DashboardCmd) Aliases() []string { return []string{"dash"} }
func (c *DashboardCmd) Synopsis() string  { return "Show players, quests, pending reviews and server status" }
func (c *DashboardCmd) Usage() string     { return "questctl dashboard [--watch]" }
func (c *DashboardCmd) NeedsAuth() bool   { return true }

func (c *DashboardCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.watch, "watch", false, "")
	fs.BoolVar(&c.watch, "w", false, "")
}

func (c *DashboardCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.watch {
		return c.runWatch(ctx, cfg, svc, out, errOut)
	}

	expirer := newExpirer(cfg, nil)
	snap, err := newCollector(cfg, svc, expirer).Collect(ctx)
	if err != nil {
		return failWith(cfg, errOut, err, expirer)
	}
	if code, done := emit(cfg, out, errOut, snap); done {
		return code
	}
	output.FormatDashboard(out, snap)
	return exitcode.Success
}

// runWatch shows the live view until the user quits, ctx ends or the
// session expires.
func (c *DashboardCmd) runWatch(ctx context.Context, cfg *config.Config, svc service.Service, out, errOut io.Writer) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var prog *tea.Program
	expirer := newExpirer(cfg, func() { prog.Send(ui.ExpiredMsg{}) })
	collector := newCollector(cfg, svc, expirer)

	p := &poll.Poller{
		Interval:  cfg.Settings.DashboardInterval,
		Immediate: true,
		Logger:    cfg.Log(),
		Refresh: func(ctx context.Context) error {
			snap, err := collector.Collect(ctx)
			switch {
			case service.IsUnauthorized(err):
				return err
			case err != nil:
				prog.Send(ui.ErrMsg{Err: err})
				return err
			}
			prog.Send(ui.SnapshotMsg(snap))
			return nil
		},
	}
	prog = tea.NewProgram(
		ui.NewDashboardModel(func() { p.RunNow() }),
		tea.WithContext(ctx),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)

	p.Start(ctx)
	final, err := prog.Run()
	cancel()
	p.Stop()

	if m, ok := final.(ui.DashboardModel); (ok && m.Expired()) || expirer.Expired() {
		fmt.Fprintln(errOut, sessionExpiredMsg)
		return exitcode.AuthError
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

// StatusCmd implements the status command.
type StatusCmd struct {
	watch bool
}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return nil }
func (c *StatusCmd) Synopsis() string  { return "Show API and database status" }
func (c *StatusCmd) Usage() string     { return "questctl status [--watch]" }
func (c *StatusCmd) NeedsAuth() bool   { return true }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.watch, "watch", false, "")
	fs.BoolVar(&c.watch, "w", false, "")
}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	checker := newStatusChecker(cfg, svc)
	show := func(ctx context.Context) error {
		st := checker.Check(ctx)
		if _, done := emit(cfg, out, errOut, st); done {
			return nil
		}
		if c.watch {
			fmt.Fprintf(out, "── %s ──\n", now().Format("15:04:05"))
		}
		output.FormatServers(out, st)
		return nil
	}

	if c.watch {
		return watch(ctx, cfg, cfg.Settings.StatusInterval, show, errOut)
	}
	_ = show(ctx)
	return exitcode.Success
}

// StatsCmd implements the stats command.
type StatsCmd struct{}

func (c *StatsCmd) Name() string      { return "stats" }
func (c *StatsCmd) Aliases() []string { return nil }
func (c *StatsCmd) Synopsis() string  { return "Show the backend's summary counters" }
func (c *StatsCmd) Usage() string     { return "questctl stats" }
func (c *StatsCmd) NeedsAuth() bool   { return true }

func (c *StatsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	s, err := svc.Stats(ctx)
	if err != nil {
		return fail(cfg, errOut, err)
	}
	if code, done := emit(cfg, out, errOut, s); done {
		return code
	}
	fmt.Fprintf(out, "Users            %d (%d active)\n", s.TotalUsers, s.ActiveUsers)
	fmt.Fprintf(out, "Quests           %d (%d completed)\n", s.TotalTasks, s.CompletedTasks)
	fmt.Fprintf(out, "XP distributed   %d\n", s.TotalPointsDistributed)
	fmt.Fprintf(out, "Rewards redeemed %d\n", s.RewardsRedeemed)
	return exitcode.Success
}

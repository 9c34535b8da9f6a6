// Package dashboard computes the admin dashboard: stats, badges, the
// performance probe and the server status.
package dashboard

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"questctl/internal/service"
)

// Stats are the dashboard counters.
type Stats struct {
	ActiveUsers      int `json:"active_users" yaml:"active_users"`
	TotalUsers       int `json:"total_users" yaml:"total_users"`
	ActiveTasks      int `json:"active_tasks" yaml:"active_tasks"`
	ActiveRewards    int `json:"active_rewards" yaml:"active_rewards"`
	Pending          int `json:"pending" yaml:"pending"`
	TotalSubmissions int `json:"total_submissions" yaml:"total_submissions"`
}

// PendingBadge grades the verification backlog.
func (s Stats) PendingBadge() string {
	switch {
	case s.Pending == 0:
		return "CLEAR"
	case s.Pending > 10:
		return "URGENT"
	case s.Pending > 5:
		return "HIGH"
	default:
		return "PENDING"
	}
}

// QuestBadge grades the number of live quests.
func (s Stats) QuestBadge() string {
	switch {
	case s.ActiveTasks > 15:
		return "HOT"
	case s.ActiveTasks > 10:
		return "ACTIVE"
	default:
		return "LIVE"
	}
}

// LootBadge grades the reward catalog.
func (s Stats) LootBadge() string {
	switch {
	case s.ActiveRewards > 10:
		return "FULL"
	case s.ActiveRewards > 5:
		return "STOCKED"
	default:
		return "CATALOG"
	}
}

// Loader fetches the five dashboard collections concurrently.
type Loader struct {
	Service service.Service
	Logger  *zap.Logger
	// OnUnauthorized runs when any fetch is rejected. Load calls it at
	// most once per call; make it idempotent across calls.
	OnUnauthorized func()
}

// Load fetches users, tasks, submitted user-tasks, rewards and all
// user-tasks in parallel. If any fetch is unauthorized it returns
// service.ErrUnauthorized and no stats. Other failures count as empty.
func (l *Loader) Load(ctx context.Context) (Stats, error) {
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var (
		users     []service.User
		tasks     []service.Task
		pending   []service.UserTask
		rewards   []service.Reward
		userTasks []service.UserTask
		denied    atomic.Bool
	)

	// Failures never cancel siblings; every fetch runs to completion.
	var g errgroup.Group
	fetch := func(name string, fn func() error) {
		g.Go(func() error {
			if err := fn(); err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					denied.Store(true)
					return nil
				}
				log.Warn("dashboard fetch failed", zap.String("collection", name), zap.Error(err))
			}
			return nil
		})
	}

	fetch("users", func() (err error) {
		users, err = l.Service.ListUsers(ctx)
		return err
	})
	fetch("tasks", func() (err error) {
		tasks, err = l.Service.ListTasks(ctx, true)
		return err
	})
	fetch("pending", func() (err error) {
		pending, err = l.Service.ListUserTasks(ctx, service.StatusSubmitted)
		return err
	})
	fetch("rewards", func() (err error) {
		rewards, err = l.Service.ListRewards(ctx)
		return err
	})
	fetch("user_tasks", func() (err error) {
		userTasks, err = l.Service.ListUserTasks(ctx, "")
		return err
	})
	_ = g.Wait()

	if denied.Load() {
		if l.OnUnauthorized != nil {
			l.OnUnauthorized()
		}
		return Stats{}, service.ErrUnauthorized
	}

	s := Stats{
		TotalUsers:       len(users),
		Pending:          len(pending),
		TotalSubmissions: len(userTasks),
	}
	for _, u := range users {
		if u.Points > 0 {
			s.ActiveUsers++
		}
	}
	for _, t := range tasks {
		if t.IsActive {
			s.ActiveTasks++
		}
	}
	for _, r := range rewards {
		if r.IsActive {
			s.ActiveRewards++
		}
	}

	log.Debug("dashboard stats",
		zap.Int("active_users", s.ActiveUsers),
		zap.Int("total_users", s.TotalUsers),
		zap.Int("active_tasks", s.ActiveTasks),
		zap.Int("pending", s.Pending),
		zap.Int("active_rewards", s.ActiveRewards))
	return s, nil
}

package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Snapshot is everything the dashboard shows at one refresh.
type Snapshot struct {
	Stats       Stats        `json:"stats" yaml:"stats"`
	Performance Performance  `json:"performance" yaml:"performance"`
	Servers     ServerStatus `json:"servers" yaml:"servers"`
	At          time.Time    `json:"refreshed_at" yaml:"refreshed_at"`
}

// Collector gathers a Snapshot: stats, probe and server status run
// concurrently.
type Collector struct {
	Loader       *Loader
	Status       *StatusChecker
	ProbeTimeout time.Duration
	Logger       *zap.Logger
	Now          func() time.Time
}

// Collect returns a fresh snapshot. Only an unauthorized stats load fails
// it, and only after the probe and status check have finished.
func (c *Collector) Collect(ctx context.Context) (Snapshot, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	// Plain group: a failed stats load must not cancel the status check.
	var snap Snapshot
	var g errgroup.Group
	g.Go(func() error {
		s, err := c.Loader.Load(ctx)
		snap.Stats = s
		return err
	})
	g.Go(func() error {
		snap.Performance = Probe(ctx, c.Loader.Service, c.ProbeTimeout)
		return nil
	})
	g.Go(func() error {
		snap.Servers = c.Status.Check(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	snap.At = now()
	if c.Logger != nil {
		c.Logger.Debug("dashboard refreshed",
			zap.String("performance", snap.Performance.Grade),
			zap.Bool("legacy_status", snap.Servers.Legacy))
	}
	return snap, nil
}

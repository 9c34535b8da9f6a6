// Package poll runs a refresh function on a fixed interval.
package poll

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is used when Interval is not positive.
const DefaultInterval = 30 * time.Second

// Poller calls Refresh every Interval until stopped. A tick that arrives
// while the previous refresh is still running is skipped.
type Poller struct {
	Interval time.Duration
	Refresh  func(ctx context.Context) error
	Logger   *zap.Logger
	// Immediate runs the first refresh on Start instead of after one interval.
	Immediate bool

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	inFlight atomic.Bool
	skipped  atomic.Int64
}

func (p *Poller) log() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Start launches the polling goroutine. Calling Start on a running poller
// does nothing. The poller stops on its own when ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.ctx, p.cancel = context.WithCancel(ctx)

	if p.Immediate {
		p.trigger()
	}

	p.wg.Add(1)
	go p.loop(p.ctx)
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.RunNow()
		case <-ctx.Done():
			return
		}
	}
}

// RunNow starts a refresh immediately. It returns false when the poller is
// stopped or a refresh is already running.
func (p *Poller) RunNow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return false
	}
	return p.trigger()
}

// trigger must be called with mu held.
func (p *Poller) trigger() bool {
	if !p.inFlight.CompareAndSwap(false, true) {
		n := p.skipped.Add(1)
		p.log().Debug("refresh still running, tick skipped", zap.Int64("skipped", n))
		return false
	}
	ctx := p.ctx
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Store(false)
		if p.Refresh == nil {
			return
		}
		if err := p.Refresh(ctx); err != nil && ctx.Err() == nil {
			p.log().Warn("poll refresh failed", zap.Error(err))
		}
	}()
	return true
}

// Stop cancels the poller and waits for the loop and any in-flight
// refresh to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	p.mu.Unlock()
	p.wg.Wait()
}

// Skipped reports how many ticks were dropped because a refresh was running.
func (p *Poller) Skipped() int64 {
	return p.skipped.Load()
}

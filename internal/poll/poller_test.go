package poll_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"questctl/internal/poll"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPoller_Ticks(t *testing.T) {
	var n atomic.Int32
	p := &poll.Poller{
		Interval: 5 * time.Millisecond,
		Refresh: func(ctx context.Context) error {
			n.Add(1)
			return errors.New("ignored")
		},
	}
	p.Start(context.Background())
	require.Eventually(t, func() bool { return n.Load() >= 3 }, 2*time.Second, time.Millisecond)
	p.Stop()

	after := n.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, n.Load(), "no refresh after Stop")
}

func TestPoller_Immediate(t *testing.T) {
	ran := make(chan struct{}, 1)
	p := &poll.Poller{
		Interval:  time.Hour,
		Immediate: true,
		Refresh: func(ctx context.Context) error {
			ran <- struct{}{}
			return nil
		},
	}
	p.Start(context.Background())
	defer p.Stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("immediate refresh did not run")
	}
}

func TestPoller_SkipsWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	p := &poll.Poller{
		Interval: time.Hour,
		Refresh: func(ctx context.Context) error {
			started <- struct{}{}
			<-release
			return nil
		},
	}
	p.Start(context.Background())
	defer p.Stop()

	require.True(t, p.RunNow())
	<-started
	assert.False(t, p.RunNow())
	assert.False(t, p.RunNow())
	assert.Equal(t, int64(2), p.Skipped())

	close(release)
	require.Eventually(t, p.RunNow, 2*time.Second, time.Millisecond)
	<-started
}

func TestPoller_StopWaitsForRefresh(t *testing.T) {
	started := make(chan struct{})
	var finished atomic.Bool
	p := &poll.Poller{
		Interval: time.Hour,
		Refresh: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			time.Sleep(10 * time.Millisecond)
			finished.Store(true)
			return ctx.Err()
		},
	}
	p.Start(context.Background())
	require.True(t, p.RunNow())
	<-started

	p.Stop()
	assert.True(t, finished.Load())
	assert.False(t, p.RunNow(), "stopped poller does not refresh")
}

func TestPoller_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &poll.Poller{Interval: time.Millisecond}
	p.Start(ctx)
	cancel()
	p.Stop()
	p.Stop()
}

package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestJobRunsImmediatelyAndOnInterval(t *testing.T) {
	var runs atomic.Int32
	s := New(zap.NewNop())
	s.Add(Job{
		Name:     "counter",
		Interval: 20 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	s.Start(context.Background())
	time.Sleep(70 * time.Millisecond)
	s.Stop()

	if got := runs.Load(); got < 2 {
		t.Errorf("expected at least 2 runs, got %d", got)
	}
}

func TestSlowJobDoesNotOverlap(t *testing.T) {
	var concurrent atomic.Int32
	var peak atomic.Int32

	s := New(zap.NewNop())
	s.Add(Job{
		Name:     "slow",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			cur := concurrent.Add(1)
			defer concurrent.Add(-1)
			if cur > peak.Load() {
				peak.Store(cur)
			}
			time.Sleep(50 * time.Millisecond)
			return nil
		},
	})

	s.Start(context.Background())
	time.Sleep(120 * time.Millisecond)
	s.Stop()

	if peak.Load() > 1 {
		t.Errorf("job overlapped itself, peak concurrency %d", peak.Load())
	}
}

func TestStopWaitsForInFlightRun(t *testing.T) {
	done := make(chan struct{})
	s := New(zap.NewNop())
	s.Add(Job{
		Name:     "slow",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			time.Sleep(30 * time.Millisecond)
			close(done)
			return nil
		},
	})

	s.Start(context.Background())
	time.Sleep(5 * time.Millisecond)
	s.Stop()

	select {
	case <-done:
	default:
		t.Error("Stop returned before the in-flight run finished")
	}
}

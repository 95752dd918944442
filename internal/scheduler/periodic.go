// Package scheduler runs named jobs on a fixed period. A job never
// overlaps itself: if a run is still going when the next tick fires,
// the tick is dropped.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of periodic work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler drives a set of periodic jobs.
type Scheduler struct {
	logger *zap.Logger
	jobs   []Job

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// Add registers a job. Must be called before Start.
func (s *Scheduler) Add(job Job) {
	s.jobs = append(s.jobs, job)
}

// Start launches all registered jobs. Each job runs once immediately,
// then on its interval until Stop is called or ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
}

// Stop cancels all jobs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	var running sync.Mutex
	run := func() {
		if !running.TryLock() {
			s.logger.Warn("skipping tick, previous run still in progress",
				zap.String("job", job.Name))
			return
		}
		defer running.Unlock()

		start := time.Now()
		if err := job.Run(ctx); err != nil {
			s.logger.Error("job failed",
				zap.String("job", job.Name),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			return
		}
		s.logger.Debug("job completed",
			zap.String("job", job.Name),
			zap.Duration("elapsed", time.Since(start)))
	}

	run()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				run()
			}()
		}
	}
}

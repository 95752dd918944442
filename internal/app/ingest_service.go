package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/notify"
	"github.com/example/tarmac/internal/ports/primary"
	"github.com/example/tarmac/internal/ports/secondary"
)

const maxBatchErrors = 10

// IngestOptions tune batch processing.
type IngestOptions struct {
	// Parallelism bounds concurrent allocations within a batch.
	Parallelism int
	// ItemTimeout caps the work done for a single flight.
	ItemTimeout time.Duration
	// DelayAlertMinutes triggers a DELAY notice for predicted
	// occupancies at or above this duration. Zero disables it.
	DelayAlertMinutes int
}

// IngestService feeds the allocator from the flight position stream.
type IngestService struct {
	allocator primary.AllocationService
	source    secondary.FlightSource
	notifier  secondary.Notifier
	logger    *zap.Logger
	opts      IngestOptions
}

var _ primary.IngestService = (*IngestService)(nil)

func NewIngestService(
	allocator primary.AllocationService,
	source secondary.FlightSource,
	notifier secondary.Notifier,
	logger *zap.Logger,
	opts IngestOptions,
) *IngestService {
	if opts.Parallelism <= 0 {
		opts.Parallelism = 10
	}
	if opts.ItemTimeout <= 0 {
		opts.ItemTimeout = 30 * time.Second
	}
	return &IngestService{
		allocator: allocator,
		source:    source,
		notifier:  notifier,
		logger:    logger,
		opts:      opts,
	}
}

// ProcessBatch allocates a stand for every flight in the batch. Each
// flight is isolated: one failure never aborts the rest.
func (s *IngestService) ProcessBatch(ctx context.Context, flights []alloc.FlightRef) (*primary.BatchStats, error) {
	stats := &primary.BatchStats{Total: len(flights)}
	if len(flights) == 0 {
		return stats, nil
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.opts.Parallelism)
	)

	for _, flight := range flights {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			itemCtx, cancel := context.WithTimeout(ctx, s.opts.ItemTimeout)
			defer cancel()

			a, err := s.allocator.Allocate(itemCtx, flight)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.Failed++
				if len(stats.Errors) < maxBatchErrors {
					stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", flight.ID, err))
				}
				if !errors.Is(err, alloc.ErrNoCapacity) && !errors.Is(err, alloc.ErrBusy) {
					s.logger.Error("allocation failed",
						zap.String("flight_id", flight.ID), zap.Error(err))
				}
				return
			}

			stats.Succeeded++
			if a.Overflow {
				stats.Overflowed++
			}
			if s.opts.DelayAlertMinutes > 0 && a.PredictedDuration >= s.opts.DelayAlertMinutes {
				s.notifier.Emit(ctx, notify.Delay(flight.ID, a.StandCode, a.PredictedDuration))
			}
		}()
	}
	wg.Wait()

	s.logger.Info("batch processed",
		zap.Int("total", stats.Total),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("failed", stats.Failed),
		zap.Int("overflowed", stats.Overflowed))
	return stats, nil
}

// Sync pulls the current flights from the source and processes them.
func (s *IngestService) Sync(ctx context.Context) (*primary.BatchStats, error) {
	flights, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch flights: %w", err)
	}
	return s.ProcessBatch(ctx, flights)
}

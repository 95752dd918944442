package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/core/scoring"
	"github.com/example/tarmac/internal/metrics"
	"github.com/example/tarmac/internal/notify"
	"github.com/example/tarmac/internal/ports/primary"
	"github.com/example/tarmac/internal/ports/secondary"
)

// RecallOptions tune the recall controller.
type RecallOptions struct {
	Weights             scoring.Weights
	SaturationThreshold float64
}

// RecallService moves overflowed allocations back to the civil pool and
// watches civil saturation. It is the only writer that transfers an
// allocation between pools.
type RecallService struct {
	allocations secondary.AllocationRepository
	stands      secondary.StandRepository
	flights     secondary.FlightRepository
	notifier    secondary.Notifier
	logger      *zap.Logger
	opts        RecallOptions
}

var _ primary.RecallService = (*RecallService)(nil)

func NewRecallService(
	allocations secondary.AllocationRepository,
	stands secondary.StandRepository,
	flights secondary.FlightRepository,
	notifier secondary.Notifier,
	logger *zap.Logger,
	opts RecallOptions,
) *RecallService {
	if opts.SaturationThreshold <= 0 {
		opts.SaturationThreshold = 0.85
	}
	return &RecallService{
		allocations: allocations,
		stands:      stands,
		flights:     flights,
		notifier:    notifier,
		logger:      logger,
		opts:        opts,
	}
}

// RunCivilRecallSweep walks the active overflow allocations oldest
// first and transfers each one for which a compatible civil stand has
// freed up. A transfer that loses its race is skipped; the allocation
// stays on its restricted stand until the next cycle.
func (s *RecallService) RunCivilRecallSweep(ctx context.Context) (*primary.SweepResult, error) {
	overflow, err := s.allocations.ListOverflow(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list overflow allocations: %w", err)
	}

	result := &primary.SweepResult{Considered: len(overflow)}
	for _, a := range overflow {
		flight, err := s.flights.GetByID(ctx, a.FlightID)
		if err != nil {
			s.logger.Warn("overflow allocation references unknown flight",
				zap.Int64("allocation_id", a.ID),
				zap.String("flight_id", a.FlightID))
			result.Skipped++
			continue
		}

		// A fresh snapshot per transfer: each recall consumes a civil
		// stand, so a stale view would double-book.
		snapshot, err := s.allocations.Snapshot(ctx, alloc.PoolCivil)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot civil pool: %w", err)
		}

		best, ok := scoring.Best(scoring.Input{
			Aircraft: flight.Size,
			Pool:     alloc.PoolCivil,
			Arrival:  time.Now().UTC(),
			Snapshot: snapshot,
			Weights:  s.opts.Weights,
		})
		if !ok {
			// Civil pool still has nothing for this size class; later
			// overflow entries may need a smaller stand, keep going.
			result.Skipped++
			continue
		}

		moved, err := s.allocations.TransferAllocation(ctx, a.ID, best.Stand.Code, "")
		if errors.Is(err, alloc.ErrConflict) || errors.Is(err, alloc.ErrNotFound) {
			// Lost the race against the allocator or a departure.
			s.logger.Debug("recall transfer lost race",
				zap.Int64("allocation_id", a.ID),
				zap.String("stand", best.Stand.Code))
			result.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to transfer allocation %d: %w", a.ID, err)
		}

		if _, err := s.allocations.ResolveConflicts(ctx, a.StandCode, time.Now().UTC()); err != nil {
			s.logger.Warn("failed to resolve conflicts on vacated stand",
				zap.String("stand", a.StandCode), zap.Error(err))
		}

		metrics.RecallsTotal.Inc()
		s.notifier.Emit(ctx, notify.Recall(flight.ID, flight.Callsign, a.StandCode, moved.StandCode))
		s.logger.Info("flight recalled to civil pool",
			zap.String("flight_id", flight.ID),
			zap.String("from", a.StandCode),
			zap.String("to", moved.StandCode))

		result.RecalledCount++
		result.Recalls = append(result.Recalls, primary.Recall{
			FlightID:  flight.ID,
			FromStand: a.StandCode,
			ToStand:   moved.StandCode,
		})
	}

	return result, nil
}

// CheckSaturation reports civil occupancy against the threshold and
// emits a SATURATION warning when it is crossed.
func (s *RecallService) CheckSaturation(ctx context.Context) (*primary.SaturationStatus, error) {
	stats, err := s.stands.PoolStats(ctx, alloc.PoolCivil)
	if err != nil {
		return nil, fmt.Errorf("failed to read civil pool stats: %w", err)
	}

	rate := stats.OccupancyRate()
	metrics.CivilOccupancyRate.Set(rate)

	status := &primary.SaturationStatus{
		OccupancyRate: rate,
		Threshold:     s.opts.SaturationThreshold,
		Saturated:     rate >= s.opts.SaturationThreshold,
		Available:     stats.Available,
	}
	if status.Saturated {
		s.notifier.Emit(ctx, notify.Saturation(rate, s.opts.SaturationThreshold))
		s.logger.Warn("civil pool saturated",
			zap.Float64("occupancy_rate", rate),
			zap.Float64("threshold", s.opts.SaturationThreshold))
	}
	return status, nil
}

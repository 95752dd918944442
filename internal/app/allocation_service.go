// Package app implements the primary ports on top of the capacity
// store and the external collaborators.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/core/conflict"
	"github.com/example/tarmac/internal/core/scoring"
	"github.com/example/tarmac/internal/metrics"
	"github.com/example/tarmac/internal/notify"
	"github.com/example/tarmac/internal/ports/primary"
	"github.com/example/tarmac/internal/ports/secondary"
)

// AllocationOptions tune the allocator.
type AllocationOptions struct {
	Weights scoring.Weights
	// CommitRetries bounds the snapshot/score/commit loop per pool.
	CommitRetries int
	// DefaultDurationMinutes is the occupancy assumed when the
	// prediction collaborator is unavailable.
	DefaultDurationMinutes int
	// PredictionTimeout caps the wait on the prediction collaborator.
	PredictionTimeout time.Duration
	// SaturationThreshold is echoed in saturation notifications.
	SaturationThreshold float64
}

// AllocationService implements primary.AllocationService.
type AllocationService struct {
	allocations secondary.AllocationRepository
	stands      secondary.StandRepository
	flights     secondary.FlightRepository
	predictor   secondary.PredictionClient
	notifier    secondary.Notifier
	logger      *zap.Logger
	opts        AllocationOptions
}

var _ primary.AllocationService = (*AllocationService)(nil)

func NewAllocationService(
	allocations secondary.AllocationRepository,
	stands secondary.StandRepository,
	flights secondary.FlightRepository,
	predictor secondary.PredictionClient,
	notifier secondary.Notifier,
	logger *zap.Logger,
	opts AllocationOptions,
) *AllocationService {
	if opts.CommitRetries <= 0 {
		opts.CommitRetries = 3
	}
	if opts.DefaultDurationMinutes <= 0 {
		opts.DefaultDurationMinutes = 90
	}
	return &AllocationService{
		allocations: allocations,
		stands:      stands,
		flights:     flights,
		predictor:   predictor,
		notifier:    notifier,
		logger:      logger,
		opts:        opts,
	}
}

// Allocate assigns the best scoring civil stand to the flight,
// overflowing to the restricted pool when the civil pool is saturated.
// Re-allocating an already allocated flight returns the existing
// allocation unchanged.
func (s *AllocationService) Allocate(ctx context.Context, flight alloc.FlightRef) (*alloc.Allocation, error) {
	existing, err := s.allocations.ActiveByFlight(ctx, flight.ID)
	if err == nil {
		s.logger.Debug("flight already allocated",
			zap.String("flight_id", flight.ID),
			zap.String("stand", existing.StandCode))
		return existing, nil
	}
	if !errors.Is(err, alloc.ErrNotFound) {
		return nil, err
	}

	if err := s.flights.Upsert(ctx, &flight); err != nil {
		return nil, fmt.Errorf("failed to record flight %s: %w", flight.ID, err)
	}

	pred := s.predict(ctx, flight)

	a, err := s.allocateInPool(ctx, flight, alloc.PoolCivil, pred)
	switch {
	case err == nil:
		metrics.AllocationsTotal.WithLabelValues(string(alloc.PoolCivil)).Inc()

	case errors.Is(err, alloc.ErrNoCapacity):
		s.checkCivilSaturation(ctx)
		a, err = s.allocateInPool(ctx, flight, alloc.PoolRestricted, pred)
		if errors.Is(err, alloc.ErrNoCapacity) {
			metrics.AllocationFailuresTotal.WithLabelValues("no_capacity").Inc()
			return nil, fmt.Errorf("no compatible stand for flight %s (%s): %w",
				flight.ID, flight.Size, alloc.ErrNoCapacity)
		}
		if err != nil {
			metrics.AllocationFailuresTotal.WithLabelValues("busy").Inc()
			return nil, err
		}
		metrics.AllocationsTotal.WithLabelValues(string(alloc.PoolRestricted)).Inc()
		metrics.OverflowTotal.Inc()
		s.notifier.Emit(ctx, notify.Overflow(flight.ID, flight.Callsign, a.StandCode))
		s.logger.Warn("flight overflowed to restricted pool",
			zap.String("flight_id", flight.ID),
			zap.String("stand", a.StandCode))

	case errors.Is(err, alloc.ErrBusy):
		metrics.AllocationFailuresTotal.WithLabelValues("busy").Inc()
		return nil, err

	default:
		return nil, err
	}

	s.detectConflicts(ctx, a)
	return a, nil
}

// allocateInPool runs the snapshot / score / commit loop for one pool.
// A commit that loses the race refreshes the snapshot and tries again;
// after CommitRetries losses the caller gets ErrBusy.
func (s *AllocationService) allocateInPool(ctx context.Context, flight alloc.FlightRef, pool alloc.Pool, pred secondary.Prediction) (*alloc.Allocation, error) {
	now := time.Now().UTC()
	for attempt := 1; attempt <= s.opts.CommitRetries; attempt++ {
		snapshot, err := s.allocations.Snapshot(ctx, pool)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot %s pool: %w", pool, err)
		}

		best, ok := scoring.Best(scoring.Input{
			Aircraft: flight.Size,
			Pool:     pool,
			Arrival:  now,
			Snapshot: snapshot,
			Weights:  s.opts.Weights,
		})
		if !ok {
			return nil, fmt.Errorf("%s pool exhausted: %w", pool, alloc.ErrNoCapacity)
		}

		params := secondary.CommitParams{
			FlightID:          flight.ID,
			StandCode:         best.Stand.Code,
			PredictedDuration: pred.DurationMinutes,
			PredictedEndTime:  now.Add(time.Duration(pred.DurationMinutes) * time.Minute),
			Confidence:        pred.Confidence,
		}
		if pool == alloc.PoolRestricted {
			params.Overflow = true
			params.OverflowReason = alloc.OverflowReasonCivilSaturation
		}

		a, err := s.allocations.CommitAllocation(ctx, params)
		if errors.Is(err, alloc.ErrConflict) {
			s.logger.Debug("commit lost race, rescoring",
				zap.String("flight_id", flight.ID),
				zap.String("stand", best.Stand.Code),
				zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}
		return a, nil
	}
	return nil, fmt.Errorf("allocation for flight %s contended %d times: %w",
		flight.ID, s.opts.CommitRetries, alloc.ErrBusy)
}

// ManualAssign places the flight on the named stand, transferring it if
// it already holds another stand.
func (s *AllocationService) ManualAssign(ctx context.Context, flight alloc.FlightRef, standCode string) (*alloc.Allocation, error) {
	stand, err := s.stands.GetByCode(ctx, standCode)
	if err != nil {
		return nil, err
	}
	if stand.Status != alloc.StandActive {
		return nil, fmt.Errorf("stand %s is under maintenance: %w", standCode, alloc.ErrIncompatible)
	}
	if !flight.Size.FitsOn(stand.Size) {
		return nil, fmt.Errorf("aircraft size %s does not fit stand %s (%s): %w",
			flight.Size, standCode, stand.Size, alloc.ErrIncompatible)
	}

	if err := s.flights.Upsert(ctx, &flight); err != nil {
		return nil, fmt.Errorf("failed to record flight %s: %w", flight.ID, err)
	}

	existing, err := s.allocations.ActiveByFlight(ctx, flight.ID)
	if err == nil {
		a, err := s.allocations.TransferAllocation(ctx, existing.ID, standCode, "manual_assignment")
		if err != nil {
			return nil, err
		}
		if _, err := s.allocations.ResolveConflicts(ctx, existing.StandCode, time.Now().UTC()); err != nil {
			s.logger.Warn("failed to resolve conflicts on vacated stand",
				zap.String("stand", existing.StandCode), zap.Error(err))
		}
		s.logger.Info("flight reassigned",
			zap.String("flight_id", flight.ID),
			zap.String("from", existing.StandCode),
			zap.String("to", standCode))
		s.detectConflicts(ctx, a)
		return a, nil
	}
	if !errors.Is(err, alloc.ErrNotFound) {
		return nil, err
	}

	pred := s.predict(ctx, flight)
	now := time.Now().UTC()
	a, err := s.allocations.CommitAllocation(ctx, secondary.CommitParams{
		FlightID:          flight.ID,
		StandCode:         standCode,
		PredictedDuration: pred.DurationMinutes,
		PredictedEndTime:  now.Add(time.Duration(pred.DurationMinutes) * time.Minute),
		Confidence:        pred.Confidence,
		Overflow:          stand.Pool == alloc.PoolRestricted,
		OverflowReason:    overflowReasonFor(stand.Pool),
	})
	if err != nil {
		return nil, err
	}
	metrics.AllocationsTotal.WithLabelValues(string(stand.Pool)).Inc()
	s.detectConflicts(ctx, a)
	return a, nil
}

// Release closes the flight's active allocation on observed departure.
func (s *AllocationService) Release(ctx context.Context, flightID string) (*alloc.Allocation, error) {
	a, err := s.allocations.ActiveByFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.allocations.CloseAllocation(ctx, a.ID, now); err != nil {
		return nil, err
	}

	resolved, err := s.allocations.ResolveConflicts(ctx, a.StandCode, now)
	if err != nil {
		s.logger.Warn("failed to resolve conflicts on release",
			zap.String("stand", a.StandCode), zap.Error(err))
	} else if resolved > 0 {
		s.logger.Info("conflicts resolved by departure",
			zap.String("stand", a.StandCode), zap.Int("count", resolved))
	}

	s.notifier.Emit(ctx, notify.ParkingFreed(flightID, a.StandCode))

	closed, err := s.allocations.GetByID(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return closed, nil
}

func (s *AllocationService) GetActive(ctx context.Context, flightID string) (*alloc.Allocation, error) {
	return s.allocations.ActiveByFlight(ctx, flightID)
}

func (s *AllocationService) ListConflicts(ctx context.Context, activeOnly bool) ([]*alloc.Allocation, error) {
	return s.allocations.ListConflicts(ctx, activeOnly)
}

func overflowReasonFor(pool alloc.Pool) string {
	if pool == alloc.PoolRestricted {
		return "manual_assignment"
	}
	return ""
}

// predict asks the prediction collaborator for an occupancy estimate,
// degrading to the configured default when it is slow or down.
func (s *AllocationService) predict(ctx context.Context, flight alloc.FlightRef) secondary.Prediction {
	if s.opts.PredictionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.PredictionTimeout)
		defer cancel()
	}

	p, err := s.predictor.PredictOccupancy(ctx, flight)
	if err != nil {
		s.logger.Warn("prediction unavailable, using default duration",
			zap.String("flight_id", flight.ID),
			zap.Int("default_minutes", s.opts.DefaultDurationMinutes),
			zap.Error(err))
		return secondary.Prediction{DurationMinutes: s.opts.DefaultDurationMinutes}
	}
	return *p
}

// detectConflicts re-checks the committed allocation against all active
// allocations. The transactional commit makes a collision impossible in
// normal operation; this guards against out-of-band writes.
func (s *AllocationService) detectConflicts(ctx context.Context, a *alloc.Allocation) {
	active, err := s.allocations.ListActive(ctx)
	if err != nil {
		s.logger.Warn("conflict check skipped", zap.Error(err))
		return
	}

	all := make([]alloc.Allocation, 0, len(active))
	for _, other := range active {
		all = append(all, *other)
	}

	collisions := conflict.Detect(*a, all)
	if len(collisions) == 0 {
		return
	}

	metrics.ConflictsTotal.Inc()
	if err := s.allocations.MarkConflict(ctx, a.ID); err != nil {
		s.logger.Error("failed to mark conflict", zap.Int64("allocation_id", a.ID), zap.Error(err))
	}
	for _, other := range collisions {
		if err := s.allocations.MarkConflict(ctx, other.ID); err != nil {
			s.logger.Error("failed to mark conflict", zap.Int64("allocation_id", other.ID), zap.Error(err))
		}
	}
	s.notifier.Emit(ctx, notify.Conflict(a.FlightID, a.StandCode, len(collisions)))
	s.logger.Error("allocation conflict detected",
		zap.Int64("allocation_id", a.ID),
		zap.String("stand", a.StandCode),
		zap.Int("colliding", len(collisions)))
}

// checkCivilSaturation runs after a failed civil-pool allocation
// attempt. It emits the SATURATION warning only when civil occupancy
// has actually crossed the threshold: a single oversized aircraft
// finding no fit in a half-empty pool is not saturation.
func (s *AllocationService) checkCivilSaturation(ctx context.Context) {
	stats, err := s.stands.PoolStats(ctx, alloc.PoolCivil)
	if err != nil {
		s.logger.Warn("failed to read civil stats", zap.Error(err))
		return
	}
	rate := stats.OccupancyRate()
	metrics.CivilOccupancyRate.Set(rate)
	if rate < s.opts.SaturationThreshold {
		return
	}
	s.notifier.Emit(ctx, notify.Saturation(rate, s.opts.SaturationThreshold))
	s.logger.Warn("civil pool saturated",
		zap.Float64("occupancy_rate", rate),
		zap.Float64("threshold", s.opts.SaturationThreshold))
}

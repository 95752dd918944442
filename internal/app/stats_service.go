package app

import (
	"context"
	"fmt"

	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/ports/primary"
	"github.com/example/tarmac/internal/ports/secondary"
)

// StatsService aggregates the operator dashboard summary.
type StatsService struct {
	allocations secondary.AllocationRepository
	stands      secondary.StandRepository
}

var _ primary.StatsService = (*StatsService)(nil)

func NewStatsService(allocations secondary.AllocationRepository, stands secondary.StandRepository) *StatsService {
	return &StatsService{allocations: allocations, stands: stands}
}

func (s *StatsService) TarmacStats(ctx context.Context) (*primary.TarmacStats, error) {
	civil, err := s.stands.PoolStats(ctx, alloc.PoolCivil)
	if err != nil {
		return nil, fmt.Errorf("failed to read civil pool stats: %w", err)
	}
	restricted, err := s.stands.PoolStats(ctx, alloc.PoolRestricted)
	if err != nil {
		return nil, fmt.Errorf("failed to read restricted pool stats: %w", err)
	}
	overflow, err := s.allocations.ListOverflow(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list overflow allocations: %w", err)
	}
	conflicts, err := s.allocations.ListConflicts(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicts: %w", err)
	}

	return &primary.TarmacStats{
		Civil:          *civil,
		Restricted:     *restricted,
		ActiveOverflow: len(overflow),
		OpenConflicts:  len(conflicts),
	}, nil
}

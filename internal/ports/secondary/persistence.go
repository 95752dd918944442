// Package secondary defines the secondary ports (driven adapters): the
// interfaces through which the application drives the capacity store
// and the external collaborators.
package secondary

import (
	"context"
	"time"

	"github.com/example/tarmac/internal/core/alloc"
)

// StandRepository is the read-mostly port for stand records.
type StandRepository interface {
	// Create persists a new stand.
	Create(ctx context.Context, stand *alloc.Stand) error

	// GetByCode retrieves a stand by its code.
	GetByCode(ctx context.Context, code string) (*alloc.Stand, error)

	// List retrieves stands matching the given filters.
	List(ctx context.Context, filters StandFilters) ([]*alloc.Stand, error)

	// UpdateStatus sets the administrative status of a stand.
	UpdateStatus(ctx context.Context, code string, status alloc.StandStatus) error

	// PoolStats returns occupancy statistics for a pool.
	PoolStats(ctx context.Context, pool alloc.Pool) (*alloc.PoolStats, error)
}

// StandFilters contains filter options for querying stands.
type StandFilters struct {
	Pool   alloc.Pool
	Status alloc.StandStatus
	Size   alloc.SizeClass
}

// CommitParams are the inputs to a transactional allocation commit.
type CommitParams struct {
	FlightID          string
	StandCode         string
	PredictedDuration int // minutes
	PredictedEndTime  time.Time
	Confidence        float64
	Overflow          bool
	OverflowReason    string
}

// AllocationRepository is the transactional port of the capacity store.
//
// A snapshot is advisory only. Every mutating operation re-validates the
// uniqueness invariant (at most one active allocation per stand and per
// flight) inside the same transaction that writes, and returns
// alloc.ErrConflict when the target was claimed in the meantime.
type AllocationRepository interface {
	// Snapshot lists stands in the given pool (empty pool = all) joined
	// with their current active allocation.
	Snapshot(ctx context.Context, pool alloc.Pool) ([]alloc.StandOccupancy, error)

	// CommitAllocation atomically creates an active allocation after
	// re-checking that the stand is free and the flight unallocated.
	CommitAllocation(ctx context.Context, params CommitParams) (*alloc.Allocation, error)

	// CloseAllocation deactivates an allocation and stamps the actual
	// end time. Returns alloc.ErrNotFound for unknown or already closed.
	CloseAllocation(ctx context.Context, id int64, endedAt time.Time) error

	// TransferAllocation closes the allocation and opens a new active
	// one on newStand as a single transaction. The stand and the flight
	// are never double-booked mid-transfer.
	TransferAllocation(ctx context.Context, id int64, newStand string, reason string) (*alloc.Allocation, error)

	// GetByID retrieves an allocation by ID.
	GetByID(ctx context.Context, id int64) (*alloc.Allocation, error)

	// ActiveByFlight returns the active allocation for a flight, or
	// alloc.ErrNotFound.
	ActiveByFlight(ctx context.Context, flightID string) (*alloc.Allocation, error)

	// ListActive returns all active allocations.
	ListActive(ctx context.Context) ([]*alloc.Allocation, error)

	// ListOverflow returns active allocations parked in the restricted
	// pool with the overflow flag set.
	ListOverflow(ctx context.Context) ([]*alloc.Allocation, error)

	// ListConflicts returns allocations flagged conflict_detected,
	// optionally restricted to active ones.
	ListConflicts(ctx context.Context, activeOnly bool) ([]*alloc.Allocation, error)

	// MarkConflict flags an allocation as conflicted.
	MarkConflict(ctx context.Context, id int64) error

	// ResolveConflicts stamps conflict_resolved on any flagged,
	// unresolved allocations referencing the stand. Returns the number
	// of allocations resolved.
	ResolveConflicts(ctx context.Context, standCode string, resolvedAt time.Time) (int, error)
}

// FlightRepository persists the flight references seen by ingestion so
// that allocations and notifications can be joined back to a flight.
type FlightRepository interface {
	// Upsert records a flight reference, updating callsign/size on
	// repeated delivery.
	Upsert(ctx context.Context, flight *alloc.FlightRef) error

	// GetByID retrieves a flight reference.
	GetByID(ctx context.Context, id string) (*alloc.FlightRef, error)
}

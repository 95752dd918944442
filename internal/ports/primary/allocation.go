// Package primary defines the primary ports (driving adapters): the
// service interfaces exposed to the CLI, the API layer, and the
// scheduler.
package primary

import (
	"context"

	"github.com/example/tarmac/internal/core/alloc"
)

// AllocationService is the entry point for all allocation decisions.
// Automated ingestion and manual operator requests share these methods;
// there is no privileged code path.
type AllocationService interface {
	// Allocate assigns a stand to the flight, or returns the existing
	// active allocation unchanged (idempotent). Errors: alloc.ErrBusy,
	// alloc.ErrNoCapacity.
	Allocate(ctx context.Context, flight alloc.FlightRef) (*alloc.Allocation, error)

	// ManualAssign places the flight on a specific stand. Errors:
	// alloc.ErrIncompatible, alloc.ErrConflict, alloc.ErrNotFound.
	ManualAssign(ctx context.Context, flight alloc.FlightRef, standCode string) (*alloc.Allocation, error)

	// Release closes the flight's active allocation on observed
	// departure and frees the stand.
	Release(ctx context.Context, flightID string) (*alloc.Allocation, error)

	// GetActive returns the active allocation for a flight.
	GetActive(ctx context.Context, flightID string) (*alloc.Allocation, error)

	// ListConflicts surfaces allocations flagged by the conflict
	// detector, optionally restricted to active ones.
	ListConflicts(ctx context.Context, activeOnly bool) ([]*alloc.Allocation, error)
}

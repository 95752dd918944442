package alloc

import "errors"

// Sentinel errors returned across port boundaries. Callers match with
// errors.Is; wrapping preserves the chain.
var (
	// ErrConflict means a commit lost a race: the target stand or the
	// flight acquired another active allocation between snapshot and
	// commit. Retried a bounded number of times by the Allocator.
	ErrConflict = errors.New("allocation conflict")

	// ErrBusy means the bounded retry budget was exhausted without a
	// successful commit. Reported, not retried further.
	ErrBusy = errors.New("allocation busy")

	// ErrNoCapacity means no compatible stand exists in either pool.
	ErrNoCapacity = errors.New("no parking capacity")

	// ErrIncompatible means a manual assignment targeted a stand that
	// cannot host the aircraft. Rejected outright, never attempted.
	ErrIncompatible = errors.New("stand incompatible with aircraft")

	// ErrNotFound means the referenced stand or allocation does not exist.
	ErrNotFound = errors.New("not found")
)

// Package conflict contains the pure double-booking detector. It is
// invoked defensively after commits and during recall sweeps; the
// transactional commit path should make real conflicts impossible.
package conflict

import (
	"time"

	"github.com/example/tarmac/internal/core/alloc"
)

// Detect returns the active allocations that collide with subject:
// another active allocation on the same stand with an overlapping time
// window, or a second active allocation for the same flight. The
// subject itself (matched by ID) is never reported.
func Detect(subject alloc.Allocation, active []alloc.Allocation) []alloc.Allocation {
	var collisions []alloc.Allocation
	for _, other := range active {
		if other.ID == subject.ID || !other.Active {
			continue
		}
		if other.FlightID == subject.FlightID {
			collisions = append(collisions, other)
			continue
		}
		if other.StandCode == subject.StandCode && overlaps(subject, other) {
			collisions = append(collisions, other)
		}
	}
	return collisions
}

// overlaps reports whether two allocations' occupancy windows intersect.
// An active allocation's window is [AllocatedAt, PredictedEndTime); a
// zero predicted end is treated as open-ended.
func overlaps(a, b alloc.Allocation) bool {
	return startsBefore(a.AllocatedAt, b.PredictedEndTime) &&
		startsBefore(b.AllocatedAt, a.PredictedEndTime)
}

func startsBefore(start, end time.Time) bool {
	if end.IsZero() {
		return true
	}
	return start.Before(end)
}

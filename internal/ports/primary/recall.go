package primary

import "context"

// Recall describes one allocation moved back to the civil pool.
type Recall struct {
	FlightID  string
	FromStand string
	ToStand   string
}

// SweepResult summarizes one recall sweep cycle.
type SweepResult struct {
	Considered    int
	RecalledCount int
	Skipped       int
	Recalls       []Recall
}

// SaturationStatus reports civil pool occupancy against the configured
// threshold.
type SaturationStatus struct {
	OccupancyRate float64
	Threshold     float64
	Saturated     bool
	Available     int
}

// RecallService is the only component permitted to move an already
// allocated flight between pools. Both entry points are idempotent and
// safe to run concurrently with the Allocator.
type RecallService interface {
	// RunCivilRecallSweep moves overflowed allocations back to the
	// civil pool where compatible capacity has freed up. Allocations
	// that lose the transfer race are skipped until the next cycle.
	RunCivilRecallSweep(ctx context.Context) (*SweepResult, error)

	// CheckSaturation emits a SATURATION notification when civil
	// occupancy exceeds the threshold. Informational only: it never
	// moves allocations.
	CheckSaturation(ctx context.Context) (*SaturationStatus, error)
}

package primary

import (
	"context"

	"github.com/example/tarmac/internal/core/alloc"
)

// TarmacStats is the operator dashboard summary.
type TarmacStats struct {
	Civil          alloc.PoolStats
	Restricted     alloc.PoolStats
	ActiveOverflow int
	OpenConflicts  int
}

// StatsService reports tarmac occupancy for the status command, the
// saturation check, and the metrics gauges.
type StatsService interface {
	TarmacStats(ctx context.Context) (*TarmacStats, error)
}

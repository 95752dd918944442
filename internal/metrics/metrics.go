// Package metrics registers the tarmac Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AllocationsTotal counts stand allocations by pool.
	AllocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tarmac",
		Name:      "allocations_total",
		Help:      "Stand allocations committed, by pool.",
	}, []string{"pool"})

	// OverflowTotal counts allocations that landed on the restricted pool.
	OverflowTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tarmac",
		Name:      "overflow_total",
		Help:      "Allocations overflowed to the restricted pool.",
	})

	// RecallsTotal counts flights recalled from restricted stands.
	RecallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tarmac",
		Name:      "recalls_total",
		Help:      "Overflow allocations recalled to civil stands.",
	})

	// ConflictsTotal counts allocations flagged as conflicting.
	ConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tarmac",
		Name:      "conflicts_total",
		Help:      "Allocations flagged with a detected conflict.",
	})

	// AllocationFailuresTotal counts failed allocation attempts by reason.
	AllocationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tarmac",
		Name:      "allocation_failures_total",
		Help:      "Failed allocation attempts, by reason.",
	}, []string{"reason"})

	// CivilOccupancyRate is the civil pool occupancy ratio from the last sweep.
	CivilOccupancyRate = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tarmac",
		Name:      "civil_occupancy_rate",
		Help:      "Civil pool occupancy ratio (0..1).",
	})
)

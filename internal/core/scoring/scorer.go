// Package scoring contains the pure stand scoring engine. Given a
// capacity snapshot and an aircraft, it filters compatible candidates
// and ranks them by a weighted desirability score. No side effects, no
// clock access: callers pass all timing in.
package scoring

import (
	"sort"
	"time"

	"github.com/example/tarmac/internal/core/alloc"
)

// Weights are the tunable score component weights. They should sum to
// roughly 1.0 but the engine does not enforce it.
type Weights struct {
	SizeFit      float64
	Jetway       float64
	Distance     float64
	Availability float64
}

// DefaultWeights returns the stock weighting: size fit dominates,
// jetway and distance are secondary, predicted availability is a
// tie-nudge.
func DefaultWeights() Weights {
	return Weights{SizeFit: 0.4, Jetway: 0.3, Distance: 0.2, Availability: 0.1}
}

// Input is one scoring request.
type Input struct {
	Aircraft alloc.SizeClass
	Pool     alloc.Pool
	// Arrival is the predicted on-stand time of the new flight, used to
	// judge stands whose occupant is about to leave.
	Arrival  time.Time
	Snapshot []alloc.StandOccupancy
	Weights  Weights
}

// ScoredStand is one ranked candidate.
type ScoredStand struct {
	Stand    alloc.Stand
	Occupied bool
	Score    float64
}

// Rank filters the snapshot to stands that can host the aircraft and
// returns them best-first. A stand qualifies when it is administratively
// active, in the requested pool, size-compatible, and either free or
// predicted to be vacated before the flight's arrival.
//
// Ordering is deterministic: score desc, then distance-to-terminal asc,
// then stand code asc. Reproducible decisions are required for audit.
func Rank(in Input) []ScoredStand {
	maxDist := 1
	for _, so := range in.Snapshot {
		if so.Stand.DistanceToTerminal > maxDist {
			maxDist = so.Stand.DistanceToTerminal
		}
	}

	var out []ScoredStand
	for _, so := range in.Snapshot {
		if !eligible(in, so) {
			continue
		}
		out = append(out, ScoredStand{
			Stand:    so.Stand,
			Occupied: so.Occupant != nil,
			Score:    score(in, so, maxDist),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Stand.DistanceToTerminal != b.Stand.DistanceToTerminal {
			return a.Stand.DistanceToTerminal < b.Stand.DistanceToTerminal
		}
		return a.Stand.Code < b.Stand.Code
	})

	return out
}

// Best returns the highest-ranked free candidate. Occupied-but-vacating
// stands participate in ranking but only a currently free stand can win:
// the commit step would reject an occupied one anyway.
func Best(in Input) (ScoredStand, bool) {
	for _, c := range Rank(in) {
		if !c.Occupied {
			return c, true
		}
	}
	return ScoredStand{}, false
}

func eligible(in Input, so alloc.StandOccupancy) bool {
	s := so.Stand
	if s.Status != alloc.StandActive {
		return false
	}
	if s.Pool != in.Pool {
		return false
	}
	if !in.Aircraft.FitsOn(s.Size) {
		return false
	}
	if so.Occupant != nil && so.Occupant.PredictedEndTime.After(in.Arrival) {
		return false
	}
	return true
}

func score(in Input, so alloc.StandOccupancy, maxDist int) float64 {
	w := in.Weights

	sizeFit := 0.5
	if so.Stand.Size == in.Aircraft {
		sizeFit = 1.0
	}

	jetway := 0.0
	if so.Stand.HasJetway {
		jetway = 1.0
	}

	dist := 1.0 - float64(so.Stand.DistanceToTerminal)/float64(maxDist)

	avail := availabilityScore(in.Arrival, so.Occupant)

	return w.SizeFit*sizeFit + w.Jetway*jetway + w.Distance*dist + w.Availability*avail
}

// availabilityScore rewards stands that are free now over stands that
// merely should be free by the time the flight arrives. The closer the
// occupant's predicted departure is to the arrival, the lower the score.
func availabilityScore(arrival time.Time, occupant *alloc.Allocation) float64 {
	if occupant == nil {
		return 1.0
	}
	lead := arrival.Sub(occupant.PredictedEndTime)
	if lead <= 0 {
		return 0
	}
	const horizon = 2 * time.Hour
	if lead >= horizon {
		return 1.0
	}
	return float64(lead) / float64(horizon)
}

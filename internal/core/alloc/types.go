// Package alloc contains the shared domain types for stand allocation.
// Types here are plain data; all behavior lives in the pure core
// packages (scoring, conflict) and the app services.
package alloc

import "time"

// Pool identifies which stand pool a stand belongs to.
type Pool string

const (
	// PoolCivil is the preferred pool for commercial traffic.
	PoolCivil Pool = "civil"
	// PoolRestricted is the reserved pool used only for overflow.
	PoolRestricted Pool = "restricted"
)

// SizeClass categorizes aircraft and stands by size.
type SizeClass string

const (
	SizeSmall  SizeClass = "small"
	SizeMedium SizeClass = "medium"
	SizeLarge  SizeClass = "large"
)

// rank orders size classes for compatibility checks.
func (s SizeClass) rank() int {
	switch s {
	case SizeSmall:
		return 1
	case SizeMedium:
		return 2
	case SizeLarge:
		return 3
	}
	return 0
}

// FitsOn reports whether an aircraft of this size class may use a stand
// of the given capacity. Small aircraft fit anywhere, medium aircraft
// need medium or large stands, large aircraft need large stands.
func (s SizeClass) FitsOn(capacity SizeClass) bool {
	if s.rank() == 0 || capacity.rank() == 0 {
		return false
	}
	return capacity.rank() >= s.rank()
}

// Valid reports whether the size class is one of the known values.
func (s SizeClass) Valid() bool {
	return s.rank() != 0
}

// StandStatus is the administrative status of a stand.
type StandStatus string

const (
	StandActive      StandStatus = "active"
	StandMaintenance StandStatus = "maintenance"
)

// Direction is the flight direction relative to the airport.
type Direction string

const (
	DirectionArrival   Direction = "arrival"
	DirectionDeparture Direction = "departure"
)

// FlightRef is the read-only flight input supplied by the ingestion
// collaborator. The engine never mutates it.
type FlightRef struct {
	ID        string
	Callsign  string
	Size      SizeClass
	Direction Direction
}

// Stand is a physical parking position on the tarmac.
type Stand struct {
	Code               string
	Pool               Pool
	Size               SizeClass
	HasJetway          bool
	DistanceToTerminal int
	Status             StandStatus
	Notes              string
}

// OverflowReasonCivilSaturation is the reason recorded when a flight is
// promoted to the restricted pool because the civil pool had no
// compatible free stand.
const OverflowReasonCivilSaturation = "civil_saturation"

// Allocation binds one flight to one stand for a time window. Closing
// an allocation sets Active=false and stamps ActualEndTime; rows are
// never deleted.
type Allocation struct {
	ID                 int64
	FlightID           string
	StandCode          string
	AllocatedAt        time.Time
	PredictedDuration  int // minutes
	PredictedEndTime   time.Time
	Confidence         float64
	ActualStartTime    *time.Time
	ActualEndTime      *time.Time
	Overflow           bool
	OverflowReason     string
	ConflictDetected   bool
	ConflictResolved   bool
	ConflictResolvedAt *time.Time
	Active             bool
}

// StandOccupancy pairs a stand with its current active allocation, if
// any. This is the unit of a capacity snapshot.
type StandOccupancy struct {
	Stand    Stand
	Occupant *Allocation
}

// PoolStats summarizes occupancy for one pool.
type PoolStats struct {
	Total     int
	Occupied  int
	Available int
}

// OccupancyRate returns the fraction of stands occupied, 0 for an
// empty pool.
func (p PoolStats) OccupancyRate() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Occupied) / float64(p.Total)
}

package secondary

import (
	"context"

	"github.com/example/tarmac/internal/core/alloc"
)

// Prediction is an occupancy-duration estimate from the ML collaborator.
type Prediction struct {
	DurationMinutes int
	Confidence      float64
}

// PredictionClient is the port to the external occupancy predictor. The
// caller applies its own timeout; errors degrade to a default duration
// rather than failing the allocation.
type PredictionClient interface {
	PredictOccupancy(ctx context.Context, flight alloc.FlightRef) (*Prediction, error)
}

package prediction

import (
	"context"
	"hash/fnv"

	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/ports/secondary"
)

// Mock produces deterministic predictions without a model endpoint.
// The same flight always gets the same prediction, which keeps local
// runs and fixtures reproducible.
type Mock struct{}

var _ secondary.PredictionClient = Mock{}

func (Mock) PredictOccupancy(_ context.Context, flight alloc.FlightRef) (*secondary.Prediction, error) {
	h := fnv.New32a()
	h.Write([]byte(flight.ID))
	seed := h.Sum32()

	// 45..164 minutes, shifted up for larger aircraft.
	duration := 45 + int(seed%120)
	switch flight.Size {
	case alloc.SizeMedium:
		duration += 15
	case alloc.SizeLarge:
		duration += 30
	}

	return &secondary.Prediction{
		DurationMinutes: duration,
		Confidence:      0.70 + float64(seed%25)/100,
	}, nil
}

package secondary

import (
	"context"

	"github.com/example/tarmac/internal/core/alloc"
)

// FlightSource is the port to the flight reference provider. The real
// flight-tracking network client lives outside this module; the shipped
// adapter reads fixture files.
type FlightSource interface {
	Fetch(ctx context.Context) ([]alloc.FlightRef, error)
}

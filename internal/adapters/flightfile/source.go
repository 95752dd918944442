// Package flightfile reads flight movements from a JSON file. It
// stands in for an AODB feed in local and test environments.
package flightfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/ports/secondary"
)

// Source loads flights from a JSON array on disk.
type Source struct {
	path string
}

var _ secondary.FlightSource = (*Source)(nil)

func New(path string) *Source {
	return &Source{path: path}
}

type flightRecord struct {
	ID        string `json:"id"`
	Callsign  string `json:"callsign"`
	Size      string `json:"aircraft_size"`
	Direction string `json:"direction"`
}

func (s *Source) Fetch(_ context.Context) ([]alloc.FlightRef, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flight file: %w", err)
	}

	var records []flightRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse flight file %s: %w", s.path, err)
	}

	flights := make([]alloc.FlightRef, 0, len(records))
	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("flight record %d has no id", i)
		}
		size := alloc.SizeClass(r.Size)
		if !size.Valid() {
			return nil, fmt.Errorf("flight %s has invalid aircraft size %q", r.ID, r.Size)
		}
		direction := alloc.Direction(r.Direction)
		if direction == "" {
			direction = alloc.DirectionArrival
		}
		flights = append(flights, alloc.FlightRef{
			ID:        r.ID,
			Callsign:  r.Callsign,
			Size:      size,
			Direction: direction,
		})
	}
	return flights, nil
}

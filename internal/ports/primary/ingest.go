package primary

import (
	"context"

	"github.com/example/tarmac/internal/core/alloc"
)

// BatchStats summarizes one ingestion batch.
type BatchStats struct {
	Total      int
	Succeeded  int
	Failed     int
	Overflowed int
	Errors     []string // capped, not exhaustive
}

// IngestService processes flight updates from the position stream and
// drives the Allocator for each one.
type IngestService interface {
	// ProcessBatch allocates stands for a batch of flight references
	// with bounded parallelism. Individual failures are isolated; the
	// batch always completes.
	ProcessBatch(ctx context.Context, flights []alloc.FlightRef) (*BatchStats, error)

	// Sync pulls the current batch from the flight source and processes
	// it. This is the scheduler's entry point.
	Sync(ctx context.Context) (*BatchStats, error)
}

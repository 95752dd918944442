package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/ports/secondary"
)

// FlightRepository implements secondary.FlightRepository with SQLite.
type FlightRepository struct {
	db *sql.DB
}

// NewFlightRepository creates a new SQLite flight repository.
func NewFlightRepository(db *sql.DB) *FlightRepository {
	return &FlightRepository{db: db}
}

// Upsert records a flight reference, updating callsign and size on
// repeated delivery of the same flight.
func (r *FlightRepository) Upsert(ctx context.Context, flight *alloc.FlightRef) error {
	var callsign sql.NullString
	if flight.Callsign != "" {
		callsign = sql.NullString{String: flight.Callsign, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO flights (id, callsign, size_class, direction)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			callsign = excluded.callsign,
			size_class = excluded.size_class,
			direction = excluded.direction,
			updated_at = CURRENT_TIMESTAMP`,
		flight.ID, callsign, flight.Size, flight.Direction,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert flight: %w", err)
	}
	return nil
}

// GetByID retrieves a flight reference.
func (r *FlightRepository) GetByID(ctx context.Context, id string) (*alloc.FlightRef, error) {
	var (
		f        alloc.FlightRef
		callsign sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, callsign, size_class, direction FROM flights WHERE id = ?", id,
	).Scan(&f.ID, &callsign, &f.Size, &f.Direction)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("flight %s: %w", id, alloc.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	f.Callsign = callsign.String
	return &f, nil
}

// Ensure FlightRepository implements the interface
var _ secondary.FlightRepository = (*FlightRepository)(nil)

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/ports/secondary"
)

// AllocationRepository implements secondary.AllocationRepository with
// SQLite. Mutations use the re-validate-on-commit discipline: the
// uniqueness invariant is checked inside the writing transaction, and a
// lost race surfaces as alloc.ErrConflict, never as a corrupted row.
// Partial unique indexes on (stand_code) and (flight_id) WHERE active=1
// are the hard backstop should the checks ever be bypassed.
type AllocationRepository struct {
	db *sql.DB
}

// NewAllocationRepository creates a new SQLite allocation repository.
func NewAllocationRepository(db *sql.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

const allocationSelectCols = "id, flight_id, stand_code, allocated_at, predicted_duration_minutes, predicted_end_time, prediction_confidence, actual_start_time, actual_end_time, overflow, overflow_reason, conflict_detected, conflict_resolved, conflict_resolved_at, active"

// scanAllocation scans an allocation row.
func scanAllocation(scanner interface {
	Scan(dest ...any) error
}) (*alloc.Allocation, error) {
	var (
		a                  alloc.Allocation
		actualStart        sql.NullTime
		actualEnd          sql.NullTime
		overflow           int
		overflowReason     sql.NullString
		conflictDetected   int
		conflictResolved   int
		conflictResolvedAt sql.NullTime
		active             int
	)
	err := scanner.Scan(
		&a.ID, &a.FlightID, &a.StandCode, &a.AllocatedAt, &a.PredictedDuration,
		&a.PredictedEndTime, &a.Confidence, &actualStart, &actualEnd,
		&overflow, &overflowReason, &conflictDetected, &conflictResolved,
		&conflictResolvedAt, &active,
	)
	if err != nil {
		return nil, err
	}
	if actualStart.Valid {
		t := actualStart.Time
		a.ActualStartTime = &t
	}
	if actualEnd.Valid {
		t := actualEnd.Time
		a.ActualEndTime = &t
	}
	if conflictResolvedAt.Valid {
		t := conflictResolvedAt.Time
		a.ConflictResolvedAt = &t
	}
	a.Overflow = overflow != 0
	a.OverflowReason = overflowReason.String
	a.ConflictDetected = conflictDetected != 0
	a.ConflictResolved = conflictResolved != 0
	a.Active = active != 0
	return &a, nil
}

// isUniqueViolation reports whether the error is the partial unique
// index rejecting a second active allocation.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// Snapshot lists stands in the given pool joined with their current
// active allocation. The snapshot is advisory: commits re-validate.
func (r *AllocationRepository) Snapshot(ctx context.Context, pool alloc.Pool) ([]alloc.StandOccupancy, error) {
	query := `
		SELECT s.code, s.pool, s.size_class, s.has_jetway, s.distance_to_terminal, s.status, s.notes,
		       a.id, a.flight_id, a.allocated_at, a.predicted_duration_minutes, a.predicted_end_time, a.overflow
		FROM stands s
		LEFT JOIN allocations a ON a.stand_code = s.code AND a.active = 1`
	args := []any{}
	if pool != "" {
		query += " WHERE s.pool = ?"
		args = append(args, pool)
	}
	query += " ORDER BY s.code ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot: %w", err)
	}
	defer rows.Close()

	var snapshot []alloc.StandOccupancy
	for rows.Next() {
		var (
			so           alloc.StandOccupancy
			jetway       int
			notes        sql.NullString
			allocID      sql.NullInt64
			flightID     sql.NullString
			allocatedAt  sql.NullTime
			predDuration sql.NullInt64
			predEnd      sql.NullTime
			overflow     sql.NullInt64
		)
		err := rows.Scan(
			&so.Stand.Code, &so.Stand.Pool, &so.Stand.Size, &jetway,
			&so.Stand.DistanceToTerminal, &so.Stand.Status, &notes,
			&allocID, &flightID, &allocatedAt, &predDuration, &predEnd, &overflow,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		so.Stand.HasJetway = jetway != 0
		so.Stand.Notes = notes.String
		if allocID.Valid {
			so.Occupant = &alloc.Allocation{
				ID:                allocID.Int64,
				FlightID:          flightID.String,
				StandCode:         so.Stand.Code,
				AllocatedAt:       allocatedAt.Time,
				PredictedDuration: int(predDuration.Int64),
				PredictedEndTime:  predEnd.Time,
				Overflow:          overflow.Int64 != 0,
				Active:            true,
			}
		}
		snapshot = append(snapshot, so)
	}
	return snapshot, rows.Err()
}

// CommitAllocation atomically creates an active allocation. Inside the
// transaction it re-checks that the stand is still free and the flight
// still unallocated; either failing returns alloc.ErrConflict.
func (r *AllocationRepository) CommitAllocation(ctx context.Context, params secondary.CommitParams) (*alloc.Allocation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin commit: %w", err)
	}
	defer tx.Rollback()

	var standCount int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM allocations WHERE stand_code = ? AND active = 1",
		params.StandCode,
	).Scan(&standCount)
	if err != nil {
		return nil, fmt.Errorf("failed to re-check stand occupancy: %w", err)
	}
	if standCount > 0 {
		return nil, fmt.Errorf("stand %s already occupied: %w", params.StandCode, alloc.ErrConflict)
	}

	var flightCount int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM allocations WHERE flight_id = ? AND active = 1",
		params.FlightID,
	).Scan(&flightCount)
	if err != nil {
		return nil, fmt.Errorf("failed to re-check flight allocation: %w", err)
	}
	if flightCount > 0 {
		return nil, fmt.Errorf("flight %s already allocated: %w", params.FlightID, alloc.ErrConflict)
	}

	var overflowReason sql.NullString
	if params.OverflowReason != "" {
		overflowReason = sql.NullString{String: params.OverflowReason, Valid: true}
	}
	overflow := 0
	if params.Overflow {
		overflow = 1
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO allocations
			(flight_id, stand_code, allocated_at, predicted_duration_minutes, predicted_end_time, prediction_confidence, actual_start_time, overflow, overflow_reason, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		params.FlightID, params.StandCode, now, params.PredictedDuration,
		params.PredictedEndTime.UTC(), params.Confidence, now, overflow, overflowReason,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("commit lost race on stand %s: %w", params.StandCode, alloc.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert allocation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get allocation id: %w", err)
	}

	created, err := getByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("commit lost race on stand %s: %w", params.StandCode, alloc.ErrConflict)
		}
		return nil, fmt.Errorf("failed to commit allocation: %w", err)
	}
	return created, nil
}

// CloseAllocation deactivates an allocation and stamps the actual end
// time. Closing an already closed allocation returns alloc.ErrNotFound.
func (r *AllocationRepository) CloseAllocation(ctx context.Context, id int64, endedAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE allocations
		SET active = 0, actual_end_time = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND active = 1`,
		endedAt.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to close allocation: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("active allocation %d: %w", id, alloc.ErrNotFound)
	}
	return nil
}

// TransferAllocation closes the allocation and opens a new active one on
// newStand in a single transaction, carrying over the predicted end
// time. The flight and both stands are never double-booked mid-transfer.
func (r *AllocationRepository) TransferAllocation(ctx context.Context, id int64, newStand string, reason string) (*alloc.Allocation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transfer: %w", err)
	}
	defer tx.Rollback()

	current, err := getByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !current.Active {
		return nil, fmt.Errorf("allocation %d already closed: %w", id, alloc.ErrNotFound)
	}
	if current.StandCode == newStand {
		return nil, fmt.Errorf("allocation %d already on stand %s: %w", id, newStand, alloc.ErrConflict)
	}

	var targetPool alloc.Pool
	err = tx.QueryRowContext(ctx, "SELECT pool FROM stands WHERE code = ?", newStand).Scan(&targetPool)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("stand %s: %w", newStand, alloc.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load target stand: %w", err)
	}

	var occupied int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM allocations WHERE stand_code = ? AND active = 1",
		newStand,
	).Scan(&occupied)
	if err != nil {
		return nil, fmt.Errorf("failed to re-check target stand: %w", err)
	}
	if occupied > 0 {
		return nil, fmt.Errorf("stand %s already occupied: %w", newStand, alloc.ErrConflict)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE allocations
		SET active = 0, actual_end_time = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		now, id,
	); err != nil {
		return nil, fmt.Errorf("failed to close allocation %d: %w", id, err)
	}

	// The new occupancy keeps the original predicted end so the recall
	// does not extend the flight's expected stay.
	remaining := int(time.Until(current.PredictedEndTime).Minutes())
	if remaining < 0 {
		remaining = 0
	}
	overflow := 0
	var overflowReason sql.NullString
	if targetPool == alloc.PoolRestricted {
		overflow = 1
		overflowReason = sql.NullString{String: reason, Valid: true}
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO allocations
			(flight_id, stand_code, allocated_at, predicted_duration_minutes, predicted_end_time, prediction_confidence, actual_start_time, overflow, overflow_reason, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		current.FlightID, newStand, now, remaining, current.PredictedEndTime.UTC(),
		current.Confidence, now, overflow, overflowReason,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("transfer lost race on stand %s: %w", newStand, alloc.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert transferred allocation: %w", err)
	}

	newID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get allocation id: %w", err)
	}

	created, err := getByIDTx(ctx, tx, newID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("transfer lost race on stand %s: %w", newStand, alloc.ErrConflict)
		}
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}
	return created, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getByIDTx(ctx context.Context, q queryRower, id int64) (*alloc.Allocation, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+allocationSelectCols+" FROM allocations WHERE id = ?", id,
	)
	a, err := scanAllocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("allocation %d: %w", id, alloc.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get allocation: %w", err)
	}
	return a, nil
}

// GetByID retrieves an allocation by ID.
func (r *AllocationRepository) GetByID(ctx context.Context, id int64) (*alloc.Allocation, error) {
	return getByIDTx(ctx, r.db, id)
}

// ActiveByFlight returns the active allocation for a flight.
func (r *AllocationRepository) ActiveByFlight(ctx context.Context, flightID string) (*alloc.Allocation, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+allocationSelectCols+" FROM allocations WHERE flight_id = ? AND active = 1",
		flightID,
	)
	a, err := scanAllocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("active allocation for flight %s: %w", flightID, alloc.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active allocation: %w", err)
	}
	return a, nil
}

func (r *AllocationRepository) list(ctx context.Context, where string, args ...any) ([]*alloc.Allocation, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+allocationSelectCols+" FROM allocations WHERE "+where+" ORDER BY allocated_at ASC, id ASC",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	defer rows.Close()

	var allocations []*alloc.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		allocations = append(allocations, a)
	}
	return allocations, rows.Err()
}

// ListActive returns all active allocations.
func (r *AllocationRepository) ListActive(ctx context.Context) ([]*alloc.Allocation, error) {
	return r.list(ctx, "active = 1")
}

// ListOverflow returns active overflow allocations.
func (r *AllocationRepository) ListOverflow(ctx context.Context) ([]*alloc.Allocation, error) {
	return r.list(ctx, "active = 1 AND overflow = 1")
}

// ListConflicts returns allocations flagged by the conflict detector.
func (r *AllocationRepository) ListConflicts(ctx context.Context, activeOnly bool) ([]*alloc.Allocation, error) {
	if activeOnly {
		return r.list(ctx, "conflict_detected = 1 AND active = 1")
	}
	return r.list(ctx, "conflict_detected = 1")
}

// MarkConflict flags an allocation as conflicted.
func (r *AllocationRepository) MarkConflict(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE allocations SET conflict_detected = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark conflict: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("allocation %d: %w", id, alloc.ErrNotFound)
	}
	return nil
}

// ResolveConflicts stamps conflict_resolved on flagged, unresolved
// allocations referencing the stand.
func (r *AllocationRepository) ResolveConflicts(ctx context.Context, standCode string, resolvedAt time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE allocations
		SET conflict_resolved = 1, conflict_resolved_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE stand_code = ? AND conflict_detected = 1 AND conflict_resolved = 0`,
		resolvedAt.UTC(), standCode,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve conflicts: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	return int(rowsAffected), nil
}

// Ensure AllocationRepository implements the interface
var _ secondary.AllocationRepository = (*AllocationRepository)(nil)

// Package sqlite contains SQLite implementations of the capacity store
// repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/ports/secondary"
)

// StandRepository implements secondary.StandRepository with SQLite.
type StandRepository struct {
	db *sql.DB
}

// NewStandRepository creates a new SQLite stand repository.
func NewStandRepository(db *sql.DB) *StandRepository {
	return &StandRepository{db: db}
}

const standSelectCols = "code, pool, size_class, has_jetway, distance_to_terminal, status, notes"

// scanStand scans a stand row.
func scanStand(scanner interface {
	Scan(dest ...any) error
}) (*alloc.Stand, error) {
	var (
		s      alloc.Stand
		jetway int
		notes  sql.NullString
	)
	err := scanner.Scan(&s.Code, &s.Pool, &s.Size, &jetway, &s.DistanceToTerminal, &s.Status, &notes)
	if err != nil {
		return nil, err
	}
	s.HasJetway = jetway != 0
	s.Notes = notes.String
	return &s, nil
}

// Create persists a new stand.
func (r *StandRepository) Create(ctx context.Context, stand *alloc.Stand) error {
	jetway := 0
	if stand.HasJetway {
		jetway = 1
	}
	var notes sql.NullString
	if stand.Notes != "" {
		notes = sql.NullString{String: stand.Notes, Valid: true}
	}
	status := stand.Status
	if status == "" {
		status = alloc.StandActive
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO stands (code, pool, size_class, has_jetway, distance_to_terminal, status, notes) VALUES (?, ?, ?, ?, ?, ?, ?)",
		stand.Code, stand.Pool, stand.Size, jetway, stand.DistanceToTerminal, status, notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create stand: %w", err)
	}
	return nil
}

// GetByCode retrieves a stand by its code.
func (r *StandRepository) GetByCode(ctx context.Context, code string) (*alloc.Stand, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+standSelectCols+" FROM stands WHERE code = ?", code,
	)
	stand, err := scanStand(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("stand %s: %w", code, alloc.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stand: %w", err)
	}
	return stand, nil
}

// List retrieves stands matching the given filters.
func (r *StandRepository) List(ctx context.Context, filters secondary.StandFilters) ([]*alloc.Stand, error) {
	query := "SELECT " + standSelectCols + " FROM stands WHERE 1=1"
	args := []any{}

	if filters.Pool != "" {
		query += " AND pool = ?"
		args = append(args, filters.Pool)
	}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if filters.Size != "" {
		query += " AND size_class = ?"
		args = append(args, filters.Size)
	}

	query += " ORDER BY code ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stands: %w", err)
	}
	defer rows.Close()

	var stands []*alloc.Stand
	for rows.Next() {
		stand, err := scanStand(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stand: %w", err)
		}
		stands = append(stands, stand)
	}
	return stands, rows.Err()
}

// UpdateStatus sets the administrative status of a stand.
func (r *StandRepository) UpdateStatus(ctx context.Context, code string, status alloc.StandStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE stands SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE code = ?",
		status, code,
	)
	if err != nil {
		return fmt.Errorf("failed to update stand status: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("stand %s: %w", code, alloc.ErrNotFound)
	}
	return nil
}

// PoolStats returns occupancy statistics for a pool.
func (r *StandRepository) PoolStats(ctx context.Context, pool alloc.Pool) (*alloc.PoolStats, error) {
	var stats alloc.PoolStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(a.id)
		FROM stands s
		LEFT JOIN allocations a ON a.stand_code = s.code AND a.active = 1
		WHERE s.pool = ? AND s.status = 'active'`,
		pool,
	).Scan(&stats.Total, &stats.Occupied)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool stats: %w", err)
	}
	stats.Available = stats.Total - stats.Occupied
	return &stats, nil
}

// Ensure StandRepository implements the interface
var _ secondary.StandRepository = (*StandRepository)(nil)

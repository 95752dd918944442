// Package sqlite_test contains integration tests for the SQLite
// capacity store. All test setup uses db.GetSchemaSQL() so tests run
// against the authoritative schema; do not hardcode CREATE TABLE
// statements here.
package sqlite_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/tarmac/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	// In-memory sqlite is per-connection; pooling would hand tests an
	// empty database on the second connection.
	testDB.SetMaxOpenConns(1)

	if _, err = testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// setupConcurrentTestDB creates a file-backed database with the same
// connection options as production (busy timeout + immediate
// transactions), so tests can race real connections against each other.
func setupConcurrentTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tarmac.db")
	testDB, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err = testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedStand inserts a test stand and returns its code.
func seedStand(t *testing.T, db *sql.DB, code, pool, size string, jetway bool, distance int) string {
	t.Helper()
	if code == "" {
		code = "C01"
	}
	if pool == "" {
		pool = "civil"
	}
	if size == "" {
		size = "medium"
	}
	j := 0
	if jetway {
		j = 1
	}
	if distance == 0 {
		distance = 100
	}
	_, err := db.Exec(
		"INSERT INTO stands (code, pool, size_class, has_jetway, distance_to_terminal, status) VALUES (?, ?, ?, ?, ?, 'active')",
		code, pool, size, j, distance,
	)
	if err != nil {
		t.Fatalf("failed to seed stand: %v", err)
	}
	return code
}

// seedFlight inserts a test flight and returns its ID.
func seedFlight(t *testing.T, db *sql.DB, id, size string) string {
	t.Helper()
	if id == "" {
		id = "abc123"
	}
	if size == "" {
		size = "medium"
	}
	_, err := db.Exec(
		"INSERT INTO flights (id, callsign, size_class, direction) VALUES (?, 'TST001', ?, 'arrival')",
		id, size,
	)
	if err != nil {
		t.Fatalf("failed to seed flight: %v", err)
	}
	return id
}

// seedAllocation inserts an active allocation directly and returns its ID.
func seedAllocation(t *testing.T, db *sql.DB, flightID, standCode string, overflow bool, predictedEnd time.Time) int64 {
	t.Helper()
	o := 0
	var reason any
	if overflow {
		o = 1
		reason = "civil_saturation"
	}
	result, err := db.Exec(`
		INSERT INTO allocations (flight_id, stand_code, allocated_at, predicted_duration_minutes, predicted_end_time, overflow, overflow_reason, active)
		VALUES (?, ?, ?, 90, ?, ?, ?, 1)`,
		flightID, standCode, time.Now().UTC(), predictedEnd.UTC(), o, reason,
	)
	if err != nil {
		t.Fatalf("failed to seed allocation: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}

package db

// SchemaSQL is the complete schema for fresh tarmac installs. It is the
// single source of truth: tests load it via GetSchemaSQL() instead of
// hardcoding CREATE TABLE statements, so repository code referencing a
// missing column fails immediately with "no such column".
//
// Keep this in sync with migrations when adding columns or tables.
const SchemaSQL = `
-- Stands (physical parking positions)
CREATE TABLE IF NOT EXISTS stands (
	code TEXT PRIMARY KEY,
	pool TEXT NOT NULL CHECK(pool IN ('civil', 'restricted')),
	size_class TEXT NOT NULL CHECK(size_class IN ('small', 'medium', 'large')),
	has_jetway INTEGER NOT NULL DEFAULT 0,
	distance_to_terminal INTEGER NOT NULL DEFAULT 100,
	status TEXT NOT NULL CHECK(status IN ('active', 'maintenance')) DEFAULT 'active',
	notes TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_stands_pool_status ON stands(pool, status);

-- Flights (read-only references supplied by the ingestion collaborator)
CREATE TABLE IF NOT EXISTS flights (
	id TEXT PRIMARY KEY,
	callsign TEXT,
	size_class TEXT NOT NULL CHECK(size_class IN ('small', 'medium', 'large')) DEFAULT 'medium',
	direction TEXT NOT NULL CHECK(direction IN ('arrival', 'departure')),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Allocations (flight-to-stand bindings; closed, never deleted)
CREATE TABLE IF NOT EXISTS allocations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	flight_id TEXT NOT NULL,
	stand_code TEXT NOT NULL,
	allocated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	predicted_duration_minutes INTEGER NOT NULL,
	predicted_end_time DATETIME NOT NULL,
	prediction_confidence REAL NOT NULL DEFAULT 0,
	actual_start_time DATETIME,
	actual_end_time DATETIME,
	overflow INTEGER NOT NULL DEFAULT 0,
	overflow_reason TEXT,
	conflict_detected INTEGER NOT NULL DEFAULT 0,
	conflict_resolved INTEGER NOT NULL DEFAULT 0,
	conflict_resolved_at DATETIME,
	active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (stand_code) REFERENCES stands(code)
);

-- Hard backstop for the uniqueness invariant: at most one active
-- allocation per stand and per flight, enforced by the engine itself.
CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_per_stand ON allocations(stand_code) WHERE active = 1;
CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_per_flight ON allocations(flight_id) WHERE active = 1;

CREATE INDEX IF NOT EXISTS idx_allocations_flight ON allocations(flight_id);
CREATE INDEX IF NOT EXISTS idx_allocations_stand ON allocations(stand_code);
CREATE INDEX IF NOT EXISTS idx_allocations_overflow ON allocations(overflow, active);
CREATE INDEX IF NOT EXISTS idx_allocations_times ON allocations(allocated_at, predicted_end_time);

-- Notifications (operator-facing events)
CREATE TABLE IF NOT EXISTS notifications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	flight_id TEXT,
	stand_code TEXT,
	type TEXT NOT NULL CHECK(type IN ('CONFLICT', 'SATURATION', 'RAPPEL', 'OVERFLOW', 'DELAY', 'PARKING_FREED')),
	severity TEXT NOT NULL CHECK(severity IN ('info', 'warning', 'critical')),
	message TEXT NOT NULL,
	read INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_type ON notifications(type);
CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);
`

// InitSchema creates the database schema
func InitSchema() error {
	db, err := GetDB()
	if err != nil {
		return err
	}

	// Check if schema_version table exists to determine if this is a fresh install
	var tableCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount == 0 {
		// Fresh install - create modern schema directly and mark all
		// migrations as applied so they never run.
		if _, err = db.Exec(SchemaSQL); err != nil {
			return err
		}
		_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`)
		if err != nil {
			return err
		}
		for i := 1; i <= len(migrations); i++ {
			if _, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", i); err != nil {
				return err
			}
		}
		return nil
	}

	// schema_version table exists - run any pending migrations
	return RunMigrations()
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}

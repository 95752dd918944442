package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "add_conflict_columns_to_allocations",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_updated_at_to_allocations",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_restricted_stands",
		Up:      migrationV3,
	},
}

// RunMigrations executes all pending migrations
func RunMigrations() error {
	db, err := GetDB()
	if err != nil {
		return fmt.Errorf("failed to get database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	for _, m := range migrations {
		var applied int
		err = db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", m.Version).Scan(&applied)
		if err != nil {
			return fmt.Errorf("failed to check migration %d: %w", m.Version, err)
		}
		if applied > 0 {
			continue
		}

		if err := m.Up(db); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}

		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// migrationV1 adds conflict tracking columns to allocations.
func migrationV1(db *sql.DB) error {
	stmts := []string{
		"ALTER TABLE allocations ADD COLUMN conflict_detected INTEGER NOT NULL DEFAULT 0",
		"ALTER TABLE allocations ADD COLUMN conflict_resolved INTEGER NOT NULL DEFAULT 0",
		"ALTER TABLE allocations ADD COLUMN conflict_resolved_at DATETIME",
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("failed to add conflict columns: %w", err)
		}
	}
	return nil
}

// migrationV2 adds updated_at to allocations.
func migrationV2(db *sql.DB) error {
	if _, err := db.Exec("ALTER TABLE allocations ADD COLUMN updated_at DATETIME"); err != nil {
		return fmt.Errorf("failed to add updated_at: %w", err)
	}
	return nil
}

// migrationV3 seeds the restricted pool for installs created before the
// overflow feature existed.
func migrationV3(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM stands WHERE pool = 'restricted'").Scan(&count); err != nil {
		return fmt.Errorf("failed to count restricted stands: %w", err)
	}
	if count > 0 {
		return nil
	}
	for i := 1; i <= 4; i++ {
		_, err := db.Exec(
			"INSERT INTO stands (code, pool, size_class, has_jetway, distance_to_terminal, status) VALUES (?, 'restricted', 'large', 0, ?, 'active')",
			fmt.Sprintf("M%02d", i), 800+i*50,
		)
		if err != nil {
			return fmt.Errorf("failed to seed restricted stand: %w", err)
		}
	}
	return nil
}

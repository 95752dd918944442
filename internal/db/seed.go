package db

import (
	"database/sql"
	"fmt"
)

// standSeed mirrors the reference tarmac layout: 13 civil stands
// (5 small, 5 medium, 3 large) plus 4 restricted large stands.
var standSeed = []struct {
	code     string
	pool     string
	size     string
	jetway   bool
	distance int
}{
	{"C01", "civil", "small", false, 120},
	{"C02", "civil", "small", false, 150},
	{"C03", "civil", "small", false, 180},
	{"C04", "civil", "small", false, 210},
	{"C05", "civil", "small", false, 240},
	{"C06", "civil", "medium", true, 80},
	{"C07", "civil", "medium", true, 100},
	{"C08", "civil", "medium", false, 260},
	{"C09", "civil", "medium", false, 300},
	{"C10", "civil", "medium", false, 340},
	{"C11", "civil", "large", true, 60},
	{"C12", "civil", "large", true, 90},
	{"C13", "civil", "large", false, 400},
	{"M01", "restricted", "large", false, 850},
	{"M02", "restricted", "large", false, 900},
	{"M03", "restricted", "large", false, 950},
	{"M04", "restricted", "large", false, 1000},
}

// SeedStands populates the stand table with the default tarmac layout.
// Existing stands are left untouched.
func SeedStands(database *sql.DB) error {
	for _, s := range standSeed {
		jetway := 0
		if s.jetway {
			jetway = 1
		}
		_, err := database.Exec(
			"INSERT OR IGNORE INTO stands (code, pool, size_class, has_jetway, distance_to_terminal, status) VALUES (?, ?, ?, ?, ?, 'active')",
			s.code, s.pool, s.size, jetway, s.distance,
		)
		if err != nil {
			return fmt.Errorf("seed stand %s: %w", s.code, err)
		}
	}
	return nil
}

package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/tarmac/internal/adapters/sqlite"
	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/ports/secondary"
)

func TestStandCreateAndGet(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewStandRepository(testDB)
	ctx := context.Background()

	stand := &alloc.Stand{
		Code:               "C01",
		Pool:               alloc.PoolCivil,
		Size:               alloc.SizeSmall,
		HasJetway:          false,
		DistanceToTerminal: 120,
	}
	if err := repo.Create(ctx, stand); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByCode(ctx, "C01")
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if got.Pool != alloc.PoolCivil || got.Size != alloc.SizeSmall || got.DistanceToTerminal != 120 {
		t.Errorf("unexpected stand: %+v", got)
	}
	if got.Status != alloc.StandActive {
		t.Errorf("expected default status active, got %s", got.Status)
	}

	if _, err := repo.GetByCode(ctx, "Z99"); !errors.Is(err, alloc.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStandListFilters(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewStandRepository(testDB)
	ctx := context.Background()

	seedStand(t, testDB, "C01", "civil", "small", false, 120)
	seedStand(t, testDB, "C11", "civil", "large", true, 60)
	seedStand(t, testDB, "M01", "restricted", "large", false, 850)

	civil, err := repo.List(ctx, secondary.StandFilters{Pool: alloc.PoolCivil})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(civil) != 2 {
		t.Fatalf("expected 2 civil stands, got %d", len(civil))
	}

	large, err := repo.List(ctx, secondary.StandFilters{Size: alloc.SizeLarge})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(large) != 2 {
		t.Fatalf("expected 2 large stands, got %d", len(large))
	}
	// Deterministic code ordering.
	if large[0].Code != "C11" || large[1].Code != "M01" {
		t.Errorf("expected C11, M01 ordering, got %s, %s", large[0].Code, large[1].Code)
	}
}

func TestStandUpdateStatus(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewStandRepository(testDB)
	ctx := context.Background()

	seedStand(t, testDB, "C01", "civil", "small", false, 120)

	if err := repo.UpdateStatus(ctx, "C01", alloc.StandMaintenance); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	got, err := repo.GetByCode(ctx, "C01")
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if got.Status != alloc.StandMaintenance {
		t.Errorf("expected maintenance, got %s", got.Status)
	}

	if err := repo.UpdateStatus(ctx, "Z99", alloc.StandActive); !errors.Is(err, alloc.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPoolStats(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewStandRepository(testDB)
	ctx := context.Background()

	seedStand(t, testDB, "C01", "civil", "small", false, 120)
	seedStand(t, testDB, "C02", "civil", "medium", false, 140)
	seedStand(t, testDB, "C03", "civil", "medium", false, 160)
	seedFlight(t, testDB, "abc123", "medium")
	seedAllocation(t, testDB, "abc123", "C02", false, time.Now().Add(time.Hour))

	stats, err := repo.PoolStats(ctx, alloc.PoolCivil)
	if err != nil {
		t.Fatalf("PoolStats failed: %v", err)
	}
	if stats.Total != 3 || stats.Occupied != 1 || stats.Available != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if rate := stats.OccupancyRate(); rate < 0.33 || rate > 0.34 {
		t.Errorf("unexpected occupancy rate: %f", rate)
	}
}

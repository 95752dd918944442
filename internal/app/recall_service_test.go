package app

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/core/scoring"
	"github.com/example/tarmac/internal/ports/secondary"
)

func newTestRecall(store *fakeStore, notifier *fakeNotifier) *RecallService {
	return NewRecallService(store, store, flightRepo{store}, notifier, zap.NewNop(), RecallOptions{
		Weights:             scoring.DefaultWeights(),
		SaturationThreshold: 0.85,
	})
}

// overflowSetup puts one medium flight on the restricted stand M01.
func overflowSetup(t *testing.T, store *fakeStore, svc *AllocationService, flightID string) *alloc.Allocation {
	t.Helper()
	a, err := svc.Allocate(context.Background(), mediumFlight(flightID))
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if !a.Overflow {
		t.Fatalf("setup expected overflow, got %+v", a)
	}
	return a
}

func TestSweepRecallsWhenCivilFrees(t *testing.T) {
	store := newFakeStore()
	store.addStand("C06", alloc.PoolCivil, alloc.SizeMedium, true, 80)
	store.addStand("M01", alloc.PoolRestricted, alloc.SizeLarge, false, 850)
	notifier := &fakeNotifier{}
	allocator := newTestAllocator(store, notifier, okPredictor())

	civil, err := allocator.Allocate(context.Background(), mediumFlight("aaa111"))
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	overflowed := overflowSetup(t, store, allocator, "bbb222")

	// Civil stand frees up before the sweep.
	if _, err := allocator.Release(context.Background(), civil.FlightID); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	result, err := newTestRecall(store, notifier).RunCivilRecallSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.Considered != 1 || result.RecalledCount != 1 || result.Skipped != 0 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Recalls[0].FromStand != "M01" || result.Recalls[0].ToStand != "C06" {
		t.Errorf("unexpected recall: %+v", result.Recalls[0])
	}

	moved, err := store.ActiveByFlight(context.Background(), "bbb222")
	if err != nil {
		t.Fatalf("ActiveByFlight failed: %v", err)
	}
	if moved.StandCode != "C06" || moved.Overflow {
		t.Errorf("flight not recalled cleanly: %+v", moved)
	}
	old, _ := store.GetByID(context.Background(), overflowed.ID)
	if old.Active {
		t.Error("restricted allocation must be closed by the recall")
	}

	recalls := notifier.ofType(secondary.NotifyRecall)
	if len(recalls) != 1 || recalls[0].Severity != secondary.SeverityInfo {
		t.Errorf("expected one info recall notification, got %+v", recalls)
	}
}

func TestSweepSkipsWhenCivilStillFull(t *testing.T) {
	store := newFakeStore()
	store.addStand("C06", alloc.PoolCivil, alloc.SizeMedium, true, 80)
	store.addStand("M01", alloc.PoolRestricted, alloc.SizeLarge, false, 850)
	allocator := newTestAllocator(store, &fakeNotifier{}, okPredictor())

	if _, err := allocator.Allocate(context.Background(), mediumFlight("aaa111")); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	overflowSetup(t, store, allocator, "bbb222")

	result, err := newTestRecall(store, &fakeNotifier{}).RunCivilRecallSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.Considered != 1 || result.RecalledCount != 0 || result.Skipped != 1 {
		t.Errorf("unexpected result: %+v", result)
	}

	still, _ := store.ActiveByFlight(context.Background(), "bbb222")
	if still.StandCode != "M01" {
		t.Errorf("flight must stay on M01, got %s", still.StandCode)
	}
}

func TestSweepSkipsLostTransferRace(t *testing.T) {
	store := newFakeStore()
	store.addStand("C06", alloc.PoolCivil, alloc.SizeMedium, true, 80)
	store.addStand("M01", alloc.PoolRestricted, alloc.SizeLarge, false, 850)
	allocator := newTestAllocator(store, &fakeNotifier{}, okPredictor())

	civil, err := allocator.Allocate(context.Background(), mediumFlight("aaa111"))
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	overflowSetup(t, store, allocator, "bbb222")
	if _, err := allocator.Release(context.Background(), civil.FlightID); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	// A concurrent arrival claims C06 between the snapshot and the
	// transfer.
	store.transferHook = func(int64, string) error {
		return fmt.Errorf("stand C06 already occupied: %w", alloc.ErrConflict)
	}

	result, err := newTestRecall(store, &fakeNotifier{}).RunCivilRecallSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.RecalledCount != 0 || result.Skipped != 1 {
		t.Errorf("lost race must be skipped, got %+v", result)
	}

	still, _ := store.ActiveByFlight(context.Background(), "bbb222")
	if still.StandCode != "M01" {
		t.Errorf("flight must remain on M01 after lost race, got %s", still.StandCode)
	}
}

func TestCheckSaturation(t *testing.T) {
	store := newFakeStore()
	store.addStand("C06", alloc.PoolCivil, alloc.SizeMedium, true, 80)
	store.addStand("C07", alloc.PoolCivil, alloc.SizeMedium, false, 200)
	notifier := &fakeNotifier{}
	allocator := newTestAllocator(store, notifier, okPredictor())
	recall := newTestRecall(store, notifier)
	ctx := context.Background()

	status, err := recall.CheckSaturation(ctx)
	if err != nil {
		t.Fatalf("CheckSaturation failed: %v", err)
	}
	if status.Saturated || status.Available != 2 {
		t.Errorf("empty pool reported saturated: %+v", status)
	}

	if _, err := allocator.Allocate(ctx, mediumFlight("aaa111")); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if _, err := allocator.Allocate(ctx, mediumFlight("bbb222")); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	status, err = recall.CheckSaturation(ctx)
	if err != nil {
		t.Fatalf("CheckSaturation failed: %v", err)
	}
	if !status.Saturated || status.OccupancyRate != 1.0 {
		t.Errorf("full pool not reported saturated: %+v", status)
	}
	if got := notifier.ofType(secondary.NotifySaturation); len(got) != 1 {
		t.Errorf("expected 1 saturation notification, got %d", len(got))
	}
}

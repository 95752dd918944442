package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/ports/secondary"
)

// fakeStore is an in-memory capacity store implementing the stand,
// allocation, and flight repositories with the same invariants as the
// sqlite adapter. commitHook and transferHook let tests inject races.
type fakeStore struct {
	mu      sync.Mutex
	stands  map[string]*alloc.Stand
	allocs  map[int64]*alloc.Allocation
	flights map[string]*alloc.FlightRef
	nextID  int64

	commitHook   func(params secondary.CommitParams) error
	transferHook func(id int64, newStand string) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stands:  make(map[string]*alloc.Stand),
		allocs:  make(map[int64]*alloc.Allocation),
		flights: make(map[string]*alloc.FlightRef),
	}
}

func (f *fakeStore) addStand(code string, pool alloc.Pool, size alloc.SizeClass, jetway bool, distance int) {
	f.stands[code] = &alloc.Stand{
		Code:               code,
		Pool:               pool,
		Size:               size,
		HasJetway:          jetway,
		DistanceToTerminal: distance,
		Status:             alloc.StandActive,
	}
}

func (f *fakeStore) activeOn(standCode string) *alloc.Allocation {
	for _, a := range f.allocs {
		if a.Active && a.StandCode == standCode {
			return a
		}
	}
	return nil
}

// StandRepository

func (f *fakeStore) Create(_ context.Context, stand *alloc.Stand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if stand.Status == "" {
		stand.Status = alloc.StandActive
	}
	f.stands[stand.Code] = stand
	return nil
}

func (f *fakeStore) GetByCode(_ context.Context, code string) (*alloc.Stand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stands[code]
	if !ok {
		return nil, fmt.Errorf("stand %s: %w", code, alloc.ErrNotFound)
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStore) List(_ context.Context, filters secondary.StandFilters) ([]*alloc.Stand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*alloc.Stand
	for _, s := range f.stands {
		if filters.Pool != "" && s.Pool != filters.Pool {
			continue
		}
		if filters.Status != "" && s.Status != filters.Status {
			continue
		}
		if filters.Size != "" && s.Size != filters.Size {
			continue
		}
		copied := *s
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, code string, status alloc.StandStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stands[code]
	if !ok {
		return fmt.Errorf("stand %s: %w", code, alloc.ErrNotFound)
	}
	s.Status = status
	return nil
}

func (f *fakeStore) PoolStats(_ context.Context, pool alloc.Pool) (*alloc.PoolStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &alloc.PoolStats{}
	for _, s := range f.stands {
		if s.Pool != pool {
			continue
		}
		stats.Total++
		if f.activeOn(s.Code) != nil {
			stats.Occupied++
		} else {
			stats.Available++
		}
	}
	return stats, nil
}

// AllocationRepository

func (f *fakeStore) Snapshot(_ context.Context, pool alloc.Pool) ([]alloc.StandOccupancy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []alloc.StandOccupancy
	for _, s := range f.stands {
		if pool != "" && s.Pool != pool {
			continue
		}
		occ := alloc.StandOccupancy{Stand: *s}
		if a := f.activeOn(s.Code); a != nil {
			copied := *a
			occ.Occupant = &copied
		}
		out = append(out, occ)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stand.Code < out[j].Stand.Code })
	return out, nil
}

func (f *fakeStore) CommitAllocation(_ context.Context, params secondary.CommitParams) (*alloc.Allocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commitHook != nil {
		if err := f.commitHook(params); err != nil {
			return nil, err
		}
	}
	if f.activeOn(params.StandCode) != nil {
		return nil, fmt.Errorf("stand %s already occupied: %w", params.StandCode, alloc.ErrConflict)
	}
	for _, a := range f.allocs {
		if a.Active && a.FlightID == params.FlightID {
			return nil, fmt.Errorf("flight %s already allocated: %w", params.FlightID, alloc.ErrConflict)
		}
	}

	f.nextID++
	now := time.Now().UTC()
	a := &alloc.Allocation{
		ID:                f.nextID,
		FlightID:          params.FlightID,
		StandCode:         params.StandCode,
		AllocatedAt:       now,
		PredictedDuration: params.PredictedDuration,
		PredictedEndTime:  params.PredictedEndTime,
		Confidence:        params.Confidence,
		ActualStartTime:   &now,
		Overflow:          params.Overflow,
		OverflowReason:    params.OverflowReason,
		Active:            true,
	}
	f.allocs[a.ID] = a
	copied := *a
	return &copied, nil
}

func (f *fakeStore) CloseAllocation(_ context.Context, id int64, endedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.allocs[id]
	if !ok || !a.Active {
		return fmt.Errorf("allocation %d: %w", id, alloc.ErrNotFound)
	}
	a.Active = false
	a.ActualEndTime = &endedAt
	return nil
}

func (f *fakeStore) TransferAllocation(_ context.Context, id int64, newStand string, reason string) (*alloc.Allocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transferHook != nil {
		if err := f.transferHook(id, newStand); err != nil {
			return nil, err
		}
	}
	a, ok := f.allocs[id]
	if !ok || !a.Active {
		return nil, fmt.Errorf("allocation %d: %w", id, alloc.ErrNotFound)
	}
	target, ok := f.stands[newStand]
	if !ok {
		return nil, fmt.Errorf("stand %s: %w", newStand, alloc.ErrNotFound)
	}
	if f.activeOn(newStand) != nil {
		return nil, fmt.Errorf("stand %s already occupied: %w", newStand, alloc.ErrConflict)
	}

	now := time.Now().UTC()
	a.Active = false
	a.ActualEndTime = &now

	f.nextID++
	moved := &alloc.Allocation{
		ID:                f.nextID,
		FlightID:          a.FlightID,
		StandCode:         newStand,
		AllocatedAt:       now,
		PredictedDuration: a.PredictedDuration,
		PredictedEndTime:  a.PredictedEndTime,
		Confidence:        a.Confidence,
		ActualStartTime:   &now,
		Active:            true,
	}
	if target.Pool == alloc.PoolRestricted {
		moved.Overflow = true
		moved.OverflowReason = reason
	}
	f.allocs[moved.ID] = moved
	copied := *moved
	return &copied, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*alloc.Allocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.allocs[id]
	if !ok {
		return nil, fmt.Errorf("allocation %d: %w", id, alloc.ErrNotFound)
	}
	copied := *a
	return &copied, nil
}

func (f *fakeStore) ActiveByFlight(_ context.Context, flightID string) (*alloc.Allocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.allocs {
		if a.Active && a.FlightID == flightID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("flight %s: %w", flightID, alloc.ErrNotFound)
}

func (f *fakeStore) listWhere(match func(*alloc.Allocation) bool) []*alloc.Allocation {
	var out []*alloc.Allocation
	for _, a := range f.allocs {
		if match(a) {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeStore) ListActive(_ context.Context) ([]*alloc.Allocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listWhere(func(a *alloc.Allocation) bool { return a.Active }), nil
}

func (f *fakeStore) ListOverflow(_ context.Context) ([]*alloc.Allocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listWhere(func(a *alloc.Allocation) bool { return a.Active && a.Overflow }), nil
}

func (f *fakeStore) ListConflicts(_ context.Context, activeOnly bool) ([]*alloc.Allocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listWhere(func(a *alloc.Allocation) bool {
		if !a.ConflictDetected || a.ConflictResolved {
			return false
		}
		return !activeOnly || a.Active
	}), nil
}

func (f *fakeStore) MarkConflict(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.allocs[id]
	if !ok {
		return fmt.Errorf("allocation %d: %w", id, alloc.ErrNotFound)
	}
	a.ConflictDetected = true
	return nil
}

func (f *fakeStore) ResolveConflicts(_ context.Context, standCode string, resolvedAt time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, a := range f.allocs {
		if a.StandCode == standCode && a.ConflictDetected && !a.ConflictResolved {
			a.ConflictResolved = true
			a.ConflictResolvedAt = &resolvedAt
			count++
		}
	}
	return count, nil
}

// FlightRepository

func (f *fakeStore) Upsert(_ context.Context, flight *alloc.FlightRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *flight
	f.flights[flight.ID] = &copied
	return nil
}

func (f *fakeStore) GetFlight(_ context.Context, id string) (*alloc.FlightRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fl, ok := f.flights[id]
	if !ok {
		return nil, fmt.Errorf("flight %s: %w", id, alloc.ErrNotFound)
	}
	copied := *fl
	return &copied, nil
}

// flightRepo adapts fakeStore to secondary.FlightRepository without the
// GetByID name colliding with the allocation repository's.
type flightRepo struct{ *fakeStore }

func (r flightRepo) GetByID(ctx context.Context, id string) (*alloc.FlightRef, error) {
	return r.GetFlight(ctx, id)
}

// fakePredictor returns a fixed prediction or error.
type fakePredictor struct {
	mu         sync.Mutex
	prediction secondary.Prediction
	err        error
	calls      int
}

func (p *fakePredictor) PredictOccupancy(_ context.Context, _ alloc.FlightRef) (*secondary.Prediction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	copied := p.prediction
	return &copied, nil
}

// fakeNotifier records emitted notifications.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []secondary.Notification
}

func (n *fakeNotifier) Emit(_ context.Context, notification secondary.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
}

func (n *fakeNotifier) ofType(t secondary.NotificationType) []secondary.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []secondary.Notification
	for _, sent := range n.sent {
		if sent.Type == t {
			out = append(out, sent)
		}
	}
	return out
}

// fakeSource returns a fixed flight batch.
type fakeSource struct {
	flights []alloc.FlightRef
	err     error
}

func (s *fakeSource) Fetch(_ context.Context) ([]alloc.FlightRef, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.flights, nil
}

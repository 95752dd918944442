package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/tarmac/internal/adapters/sqlite"
	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/ports/secondary"
)

func TestNotificationCreateAndList(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewNotificationRepository(testDB)
	ctx := context.Background()

	n := &secondary.Notification{
		FlightID:  "abc123",
		StandCode: "M01",
		Type:      secondary.NotifyOverflow,
		Severity:  secondary.SeverityWarning,
		Message:   "flight abc123 overflowed to restricted stand M01",
	}
	if err := repo.Create(ctx, n); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if n.ID == 0 {
		t.Error("expected notification ID to be assigned")
	}

	if err := repo.Create(ctx, &secondary.Notification{
		Type:     secondary.NotifySaturation,
		Severity: secondary.SeverityWarning,
		Message:  "civil pool occupancy above threshold",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	all, err := repo.List(ctx, secondary.NotificationFilters{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(all))
	}

	overflows, err := repo.List(ctx, secondary.NotificationFilters{Type: secondary.NotifyOverflow})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(overflows) != 1 || overflows[0].StandCode != "M01" {
		t.Fatalf("unexpected overflow notifications: %+v", overflows)
	}
}

func TestNotificationMarkRead(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewNotificationRepository(testDB)
	ctx := context.Background()

	n := &secondary.Notification{
		Type:     secondary.NotifyRecall,
		Severity: secondary.SeverityInfo,
		Message:  "flight recalled to civil stand",
	}
	if err := repo.Create(ctx, n); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.MarkRead(ctx, n.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	unread, err := repo.List(ctx, secondary.NotificationFilters{UnreadOnly: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(unread) != 0 {
		t.Fatalf("expected no unread notifications, got %d", len(unread))
	}

	if err := repo.MarkRead(ctx, 9999); !errors.Is(err, alloc.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

package secondary

import "context"

// NotificationType classifies notifications for operators.
type NotificationType string

const (
	NotifyConflict     NotificationType = "CONFLICT"
	NotifySaturation   NotificationType = "SATURATION"
	NotifyRecall       NotificationType = "RAPPEL"
	NotifyOverflow     NotificationType = "OVERFLOW"
	NotifyDelay        NotificationType = "DELAY"
	NotifyParkingFreed NotificationType = "PARKING_FREED"
)

// NotificationSeverity grades notifications.
type NotificationSeverity string

const (
	SeverityInfo     NotificationSeverity = "info"
	SeverityWarning  NotificationSeverity = "warning"
	SeverityCritical NotificationSeverity = "critical"
)

// Notification is one operator-facing event.
type Notification struct {
	ID        int64
	FlightID  string
	StandCode string
	Type      NotificationType
	Severity  NotificationSeverity
	Message   string
	Read      bool
	CreatedAt string
}

// Notifier is the fire-and-forget port to the notification collaborator.
// Emit must never block the caller's decision path or surface an error
// into it; implementations log failures and move on.
type Notifier interface {
	Emit(ctx context.Context, n Notification)
}

// NotificationRepository persists notifications for the CLI and API
// collaborators to read back.
type NotificationRepository interface {
	// Create persists a notification.
	Create(ctx context.Context, n *Notification) error

	// List retrieves notifications, newest first.
	List(ctx context.Context, filters NotificationFilters) ([]*Notification, error)

	// MarkRead flags a notification as read.
	MarkRead(ctx context.Context, id int64) error
}

// NotificationFilters contains filter options for querying notifications.
type NotificationFilters struct {
	Type       NotificationType
	Severity   NotificationSeverity
	UnreadOnly bool
	Limit      int
}

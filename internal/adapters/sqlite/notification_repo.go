package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/ports/secondary"
)

// NotificationRepository implements secondary.NotificationRepository
// with SQLite.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new SQLite notification repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create persists a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *secondary.Notification) error {
	var flightID, standCode sql.NullString
	if n.FlightID != "" {
		flightID = sql.NullString{String: n.FlightID, Valid: true}
	}
	if n.StandCode != "" {
		standCode = sql.NullString{String: n.StandCode, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO notifications (flight_id, stand_code, type, severity, message) VALUES (?, ?, ?, ?, ?)",
		flightID, standCode, n.Type, n.Severity, n.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	n.ID, _ = result.LastInsertId()
	return nil
}

// List retrieves notifications, newest first.
func (r *NotificationRepository) List(ctx context.Context, filters secondary.NotificationFilters) ([]*secondary.Notification, error) {
	query := "SELECT id, flight_id, stand_code, type, severity, message, read, created_at FROM notifications WHERE 1=1"
	args := []any{}

	if filters.Type != "" {
		query += " AND type = ?"
		args = append(args, filters.Type)
	}
	if filters.Severity != "" {
		query += " AND severity = ?"
		args = append(args, filters.Severity)
	}
	if filters.UnreadOnly {
		query += " AND read = 0"
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*secondary.Notification
	for rows.Next() {
		var (
			n         secondary.Notification
			flightID  sql.NullString
			standCode sql.NullString
			read      int
			createdAt time.Time
		)
		err := rows.Scan(&n.ID, &flightID, &standCode, &n.Type, &n.Severity, &n.Message, &read, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.FlightID = flightID.String
		n.StandCode = standCode.String
		n.Read = read != 0
		n.CreatedAt = createdAt.Format(time.RFC3339)
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// MarkRead flags a notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("notification %d: %w", id, alloc.ErrNotFound)
	}
	return nil
}

// Ensure NotificationRepository implements the interface
var _ secondary.NotificationRepository = (*NotificationRepository)(nil)

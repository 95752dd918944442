// Package notify persists operational notifications. Emission is
// fire-and-forget: a failed write is logged and never propagated into
// the allocation path.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/tarmac/internal/ports/secondary"
)

// Notifier writes notifications through the repository and swallows
// persistence errors.
type Notifier struct {
	repo   secondary.NotificationRepository
	logger *zap.Logger
}

var _ secondary.Notifier = (*Notifier)(nil)

func NewNotifier(repo secondary.NotificationRepository, logger *zap.Logger) *Notifier {
	return &Notifier{repo: repo, logger: logger}
}

func (n *Notifier) Emit(ctx context.Context, notification secondary.Notification) {
	if err := n.repo.Create(ctx, &notification); err != nil {
		n.logger.Warn("failed to persist notification",
			zap.String("type", string(notification.Type)),
			zap.String("flight_id", notification.FlightID),
			zap.Error(err))
		return
	}
	n.logger.Info("notification emitted",
		zap.String("type", string(notification.Type)),
		zap.String("severity", string(notification.Severity)),
		zap.String("message", notification.Message))
}

// Overflow builds the warning emitted when a flight lands on a
// restricted stand.
func Overflow(flightID, callsign, standCode string) secondary.Notification {
	return secondary.Notification{
		FlightID:  flightID,
		StandCode: standCode,
		Type:      secondary.NotifyOverflow,
		Severity:  secondary.SeverityWarning,
		Message:   fmt.Sprintf("flight %s assigned to restricted stand %s: civil pool saturated", callsign, standCode),
	}
}

// Recall builds the info notice emitted when an overflow flight is
// brought back to a civil stand.
func Recall(flightID, callsign, fromStand, toStand string) secondary.Notification {
	return secondary.Notification{
		FlightID:  flightID,
		StandCode: toStand,
		Type:      secondary.NotifyRecall,
		Severity:  secondary.SeverityInfo,
		Message:   fmt.Sprintf("flight %s recalled from %s to civil stand %s", callsign, fromStand, toStand),
	}
}

// Saturation builds the warning emitted when civil occupancy crosses
// the configured threshold.
func Saturation(rate, threshold float64) secondary.Notification {
	return secondary.Notification{
		Type:     secondary.NotifySaturation,
		Severity: secondary.SeverityWarning,
		Message:  fmt.Sprintf("civil pool occupancy %.0f%% above threshold %.0f%%", rate*100, threshold*100),
	}
}

// Conflict builds the critical alert emitted when an allocation
// collides with another active allocation.
func Conflict(flightID, standCode string, others int) secondary.Notification {
	return secondary.Notification{
		FlightID:  flightID,
		StandCode: standCode,
		Type:      secondary.NotifyConflict,
		Severity:  secondary.SeverityCritical,
		Message:   fmt.Sprintf("allocation conflict on stand %s for flight %s (%d colliding)", standCode, flightID, others),
	}
}

// Delay builds the info notice emitted when a predicted occupancy is
// unusually long.
func Delay(flightID, standCode string, minutes int) secondary.Notification {
	return secondary.Notification{
		FlightID:  flightID,
		StandCode: standCode,
		Type:      secondary.NotifyDelay,
		Severity:  secondary.SeverityInfo,
		Message:   fmt.Sprintf("flight %s predicted to occupy %s for %d minutes", flightID, standCode, minutes),
	}
}

// ParkingFreed builds the info notice emitted when a stand is released.
func ParkingFreed(flightID, standCode string) secondary.Notification {
	return secondary.Notification{
		FlightID:  flightID,
		StandCode: standCode,
		Type:      secondary.NotifyParkingFreed,
		Severity:  secondary.SeverityInfo,
		Message:   fmt.Sprintf("stand %s freed by flight %s", standCode, flightID),
	}
}

package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/tarmac/internal/ports/secondary"
	"github.com/example/tarmac/internal/wire"
)

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		unread, _ := cmd.Flags().GetBool("unread")
		limit, _ := cmd.Flags().GetInt("limit")
		typeFilter, _ := cmd.Flags().GetString("type")

		notifications, err := wire.NotificationRepository().List(context.Background(), secondary.NotificationFilters{
			Type:       secondary.NotificationType(typeFilter),
			UnreadOnly: unread,
			Limit:      limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list notifications: %w", err)
		}

		if len(notifications) == 0 {
			fmt.Println("No notifications")
			return nil
		}

		for _, n := range notifications {
			marker := " "
			if !n.Read {
				marker = "●"
			}
			severity := string(n.Severity)
			switch n.Severity {
			case secondary.SeverityCritical:
				severity = color.RedString(severity)
			case secondary.SeverityWarning:
				severity = color.YellowString(severity)
			}
			fmt.Printf("%s #%-4d %-13s %-8s %s\n", marker, n.ID, n.Type, severity, n.Message)
		}
		return nil
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read [id]",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid notification id %q", args[0])
		}
		if err := wire.NotificationRepository().MarkRead(context.Background(), id); err != nil {
			return fmt.Errorf("failed to mark read: %w", err)
		}
		fmt.Printf("✓ Notification #%d marked read\n", id)
		return nil
	},
}

// NotificationsCmd returns the notifications command
func NotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Read operator notifications",
	}
	notificationsListCmd.Flags().Bool("unread", false, "Only unread notifications")
	notificationsListCmd.Flags().Int("limit", 20, "Maximum notifications to show")
	notificationsListCmd.Flags().String("type", "", "Filter by type (CONFLICT, SATURATION, RAPPEL, OVERFLOW, DELAY, PARKING_FREED)")
	cmd.AddCommand(notificationsListCmd)
	cmd.AddCommand(notificationsReadCmd)
	return cmd
}

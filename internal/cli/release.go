package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/wire"
)

// ReleaseCmd returns the release command
func ReleaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release [flight-id]",
		Short: "Release a flight's stand on departure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wire.AllocationService().Release(context.Background(), args[0])
			if errors.Is(err, alloc.ErrNotFound) {
				return fmt.Errorf("flight %s has no active allocation", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to release: %w", err)
			}

			color.Green("✓ Stand %s freed by flight %s", a.StandCode, a.FlightID)
			return nil
		},
	}
}

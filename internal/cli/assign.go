package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/wire"
)

// AssignCmd returns the assign command
func AssignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign [flight-id] [stand-code]",
		Short: "Manually place a flight on a specific stand",
		Long:  `Place the flight on the named stand, bypassing scoring. A flight that already holds a stand is transferred. Size compatibility and occupancy are still enforced.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flight, err := flightFromFlags(cmd, args[0])
			if err != nil {
				return err
			}

			a, err := wire.AllocationService().ManualAssign(context.Background(), flight, args[1])
			switch {
			case errors.Is(err, alloc.ErrIncompatible):
				return fmt.Errorf("stand %s cannot take this flight: %v", args[1], err)
			case errors.Is(err, alloc.ErrConflict):
				return fmt.Errorf("stand %s is occupied", args[1])
			case errors.Is(err, alloc.ErrNotFound):
				return fmt.Errorf("stand %s does not exist", args[1])
			case err != nil:
				return fmt.Errorf("failed to assign: %w", err)
			}

			printAllocation(a)
			return nil
		},
	}
	cmd.Flags().String("callsign", "", "Flight callsign")
	cmd.Flags().String("size", "medium", "Aircraft size class (small, medium, large)")
	cmd.Flags().String("direction", "arrival", "Flight direction (arrival, departure)")
	return cmd
}

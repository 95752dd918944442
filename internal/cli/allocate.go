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

func flightFromFlags(cmd *cobra.Command, flightID string) (alloc.FlightRef, error) {
	callsign, _ := cmd.Flags().GetString("callsign")
	size, _ := cmd.Flags().GetString("size")
	direction, _ := cmd.Flags().GetString("direction")

	sizeClass := alloc.SizeClass(size)
	if !sizeClass.Valid() {
		return alloc.FlightRef{}, fmt.Errorf("invalid aircraft size %q (want small, medium, or large)", size)
	}
	dir := alloc.Direction(direction)
	if dir != alloc.DirectionArrival && dir != alloc.DirectionDeparture {
		return alloc.FlightRef{}, fmt.Errorf("invalid direction %q (want arrival or departure)", direction)
	}

	return alloc.FlightRef{
		ID:        flightID,
		Callsign:  callsign,
		Size:      sizeClass,
		Direction: dir,
	}, nil
}

func printAllocation(a *alloc.Allocation) {
	if a.Overflow {
		color.Yellow("⚠ Flight %s parked on restricted stand %s (overflow)", a.FlightID, a.StandCode)
	} else {
		color.Green("✓ Flight %s allocated stand %s", a.FlightID, a.StandCode)
	}
	fmt.Printf("  Allocation:  #%d\n", a.ID)
	fmt.Printf("  Predicted:   %d min (confidence %.2f)\n", a.PredictedDuration, a.Confidence)
	fmt.Printf("  Ends around: %s\n", a.PredictedEndTime.Local().Format("15:04"))
}

// AllocateCmd returns the allocate command
func AllocateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allocate [flight-id]",
		Short: "Allocate the best scoring stand to a flight",
		Long:  `Score the civil pool for the flight and commit the best compatible stand, overflowing to the restricted pool when the civil pool is saturated. Re-running for an allocated flight returns its current stand.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flight, err := flightFromFlags(cmd, args[0])
			if err != nil {
				return err
			}

			a, err := wire.AllocationService().Allocate(context.Background(), flight)
			switch {
			case errors.Is(err, alloc.ErrNoCapacity):
				return fmt.Errorf("no compatible stand available in either pool")
			case errors.Is(err, alloc.ErrBusy):
				return fmt.Errorf("allocation contended, try again")
			case err != nil:
				return fmt.Errorf("failed to allocate: %w", err)
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

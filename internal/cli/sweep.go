package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/tarmac/internal/wire"
)

// SweepCmd returns the sweep command
func SweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Recall overflowed flights back to the civil pool",
		Long:  `Walk the active overflow allocations and transfer each one for which a compatible civil stand has freed up. Also reports civil pool saturation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			result, err := wire.RecallService().RunCivilRecallSweep(ctx)
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}

			fmt.Printf("Considered %d overflow allocation(s): %d recalled, %d skipped\n",
				result.Considered, result.RecalledCount, result.Skipped)
			for _, r := range result.Recalls {
				color.Green("✓ %s: %s → %s", r.FlightID, r.FromStand, r.ToStand)
			}

			status, err := wire.RecallService().CheckSaturation(ctx)
			if err != nil {
				return fmt.Errorf("saturation check failed: %w", err)
			}
			if status.Saturated {
				color.Yellow("⚠ Civil pool at %.0f%% occupancy (threshold %.0f%%)",
					status.OccupancyRate*100, status.Threshold*100)
			} else {
				fmt.Printf("Civil pool at %.0f%% occupancy, %d stand(s) available\n",
					status.OccupancyRate*100, status.Available)
			}
			return nil
		},
	}
}

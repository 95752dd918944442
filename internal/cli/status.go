package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/wire"
)

func printPool(name string, stats alloc.PoolStats) {
	rate := stats.OccupancyRate() * 100
	line := fmt.Sprintf("  %-11s %d/%d occupied (%.0f%%), %d available",
		name, stats.Occupied, stats.Total, rate, stats.Available)
	if rate >= 85 {
		color.Yellow("%s", line)
	} else {
		fmt.Println(line)
	}
}

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tarmac occupancy",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := wire.StatsService().TarmacStats(context.Background())
			if err != nil {
				return fmt.Errorf("failed to read stats: %w", err)
			}

			fmt.Println("\nTarmac status")
			printPool("civil", stats.Civil)
			printPool("restricted", stats.Restricted)
			if stats.ActiveOverflow > 0 {
				color.Yellow("  %d flight(s) overflowed to restricted stands", stats.ActiveOverflow)
			}
			if stats.OpenConflicts > 0 {
				color.Red("  %d open conflict(s)", stats.OpenConflicts)
			}
			fmt.Println()
			return nil
		},
	}
}

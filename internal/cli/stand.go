package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/ports/secondary"
	"github.com/example/tarmac/internal/wire"
)

var standListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stands",
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, _ := cmd.Flags().GetString("pool")
		size, _ := cmd.Flags().GetString("size")

		stands, err := wire.StandRepository().List(context.Background(), secondary.StandFilters{
			Pool: alloc.Pool(pool),
			Size: alloc.SizeClass(size),
		})
		if err != nil {
			return fmt.Errorf("failed to list stands: %w", err)
		}

		if len(stands) == 0 {
			fmt.Println("No stands found")
			return nil
		}

		fmt.Printf("\n%-6s %-11s %-7s %-7s %-9s %s\n", "CODE", "POOL", "SIZE", "JETWAY", "DISTANCE", "STATUS")
		fmt.Println("──────────────────────────────────────────────────────")
		for _, s := range stands {
			jetway := "no"
			if s.HasJetway {
				jetway = "yes"
			}
			status := string(s.Status)
			if s.Status == alloc.StandMaintenance {
				status = color.YellowString(status)
			}
			fmt.Printf("%-6s %-11s %-7s %-7s %-9d %s\n",
				s.Code, s.Pool, s.Size, jetway, s.DistanceToTerminal, status)
		}
		fmt.Println()
		return nil
	},
}

var standShowCmd = &cobra.Command{
	Use:   "show [code]",
	Short: "Show stand details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stand, err := wire.StandRepository().GetByCode(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get stand: %w", err)
		}

		fmt.Printf("\nStand %s\n", stand.Code)
		fmt.Printf("  Pool:     %s\n", stand.Pool)
		fmt.Printf("  Size:     %s\n", stand.Size)
		fmt.Printf("  Jetway:   %t\n", stand.HasJetway)
		fmt.Printf("  Distance: %dm\n", stand.DistanceToTerminal)
		fmt.Printf("  Status:   %s\n", stand.Status)
		if stand.Notes != "" {
			fmt.Printf("  Notes:    %s\n", stand.Notes)
		}
		fmt.Println()
		return nil
	},
}

var standSetStatusCmd = &cobra.Command{
	Use:   "set-status [code] [active|maintenance]",
	Short: "Set the administrative status of a stand",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := alloc.StandStatus(args[1])
		if status != alloc.StandActive && status != alloc.StandMaintenance {
			return fmt.Errorf("invalid status %q (want active or maintenance)", args[1])
		}

		if err := wire.StandRepository().UpdateStatus(context.Background(), args[0], status); err != nil {
			return fmt.Errorf("failed to update stand: %w", err)
		}
		fmt.Printf("✓ Stand %s is now %s\n", args[0], status)
		return nil
	},
}

// StandCmd returns the stand command
func StandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stand",
		Short: "Manage parking stands",
	}
	standListCmd.Flags().String("pool", "", "Filter by pool (civil, restricted)")
	standListCmd.Flags().String("size", "", "Filter by size class (small, medium, large)")
	cmd.AddCommand(standListCmd)
	cmd.AddCommand(standShowCmd)
	cmd.AddCommand(standSetStatusCmd)
	return cmd
}

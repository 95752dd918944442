package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/tarmac/internal/wire"
)

// ConflictsCmd returns the conflicts command
func ConflictsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "List allocations flagged by the conflict detector",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")

			conflicts, err := wire.AllocationService().ListConflicts(context.Background(), !all)
			if err != nil {
				return fmt.Errorf("failed to list conflicts: %w", err)
			}

			if len(conflicts) == 0 {
				color.Green("No conflicts")
				return nil
			}

			fmt.Printf("\n%-6s %-12s %-6s %-8s %s\n", "ID", "FLIGHT", "STAND", "ACTIVE", "ALLOCATED")
			fmt.Println("────────────────────────────────────────────────")
			for _, a := range conflicts {
				active := "no"
				if a.Active {
					active = "yes"
				}
				fmt.Printf("%-6d %-12s %-6s %-8s %s\n",
					a.ID, a.FlightID, a.StandCode, active, a.AllocatedAt.Local().Format("2006-01-02 15:04"))
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().Bool("all", false, "Include resolved and closed allocations")
	return cmd
}

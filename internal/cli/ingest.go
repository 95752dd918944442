package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/tarmac/internal/wire"
)

// IngestCmd returns the ingest command
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Process a batch of flights from the flight feed",
		Long:  `Read the flight feed file and run the allocator for every flight in it. Failures are isolated per flight.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				wire.SetFlightSourcePath(args[0])
			}

			stats, err := wire.IngestService().Sync(context.Background())
			if err != nil {
				return fmt.Errorf("ingest failed: %w", err)
			}

			fmt.Printf("Processed %d flight(s): %d allocated, %d failed",
				stats.Total, stats.Succeeded, stats.Failed)
			if stats.Overflowed > 0 {
				fmt.Printf(", %s", color.YellowString("%d overflowed", stats.Overflowed))
			}
			fmt.Println()
			for _, e := range stats.Errors {
				fmt.Printf("  ✗ %s\n", e)
			}
			return nil
		},
	}
	return cmd
}

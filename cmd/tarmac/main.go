package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/tarmac/internal/cli"
	"github.com/example/tarmac/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "tarmac",
		Short:   "Tarmac - airport stand allocation engine",
		Version: version.String(),
		Long: `Tarmac allocates parking stands to flights, overflowing to the
restricted pool when the civil pool is saturated and recalling flights
as civil capacity frees up.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.StandCmd())
	rootCmd.AddCommand(cli.AllocateCmd())
	rootCmd.AddCommand(cli.AssignCmd())
	rootCmd.AddCommand(cli.ReleaseCmd())
	rootCmd.AddCommand(cli.IngestCmd())
	rootCmd.AddCommand(cli.SweepCmd())
	rootCmd.AddCommand(cli.ConflictsCmd())
	rootCmd.AddCommand(cli.NotificationsCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.ServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

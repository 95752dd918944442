package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/tarmac/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the tarmac database",
		Long:  `Initialize the tarmac database at ~/.tarmac/tarmac.db with the schema and the reference stand layout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing tarmac database at %s\n", dbPath)

			if err := db.InitSchema(); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}
			fmt.Println("✓ Database initialized successfully")

			database, err := db.GetDB()
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			if err := db.SeedStands(database); err != nil {
				return fmt.Errorf("failed to seed stands: %w", err)
			}
			fmt.Println("✓ Stand layout seeded (13 civil, 4 restricted)")
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  tarmac stand list")
			fmt.Println("  tarmac allocate <flight-id> --size medium")

			return nil
		},
	}
}

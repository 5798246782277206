package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/makeup-coach/internal/config"
	"github.com/kozaktomas/makeup-coach/internal/database/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply PostgreSQL migrations",
	Long:  `Connect to DATABASE_URL and apply any pending schema migrations.`,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	applied, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if pool := postgres.GetGlobalPool(); pool != nil {
			_ = pool.Close()
		}
	}()

	if len(applied) == 0 {
		fmt.Println("Schema is up to date")
		return nil
	}
	for _, m := range applied {
		fmt.Printf("Applied %s\n", m)
	}
	fmt.Printf("\n%d migrations applied\n", len(applied))
	return nil
}

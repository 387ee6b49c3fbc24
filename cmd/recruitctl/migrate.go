package main

import (
	"fmt"

	"go-recruiting-platform/config"
	"go-recruiting-platform/internal/store/postgres"
	"go-recruiting-platform/pkg/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the postgres document store migrations",
	RunE:  runMigrate,
}

var migrateStatusOnly bool

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatusOnly, "status", false, "Print migration status instead of applying")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.StoreDriver != config.StorePostgres {
		return fmt.Errorf("migrate needs STORE_DRIVER=postgres, got %q", cfg.StoreDriver)
	}

	ctx := cmd.Context()
	pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer pool.Close()
	db := database.OpenSQL(pool)
	defer db.Close()

	if migrateStatusOnly {
		return postgres.MigrationStatus(ctx, db)
	}
	if err := postgres.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

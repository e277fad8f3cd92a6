package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resume-builder/internal/infrastructure/migration"
	infra "resume-builder/pkg/infrastructure"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	pool, err := infra.NewSnapshotPool(cmd.Context(), cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	if err := migration.RunMigrations(cmd.Context(), pool); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "applied %d migrations\n", len(migration.Migrations))
	return nil
}

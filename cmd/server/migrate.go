package main

import (
	"github.com/spf13/cobra"

	"chewing-love-service/internal/infrastructure/database"
)

var migrateMode string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Migrate all tables.

Modes:
  auto  - add missing tables and columns (default)
  alter - also drop columns the models no longer have
  drop  - drop and recreate every table`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, pool, err := bootstrap()
		if err != nil {
			return err
		}
		defer pool.Close()

		mode := migrateMode
		if mode == "" {
			mode = cfg.DBMigrationMode
		}
		return database.Migrate(pool.GetDB(), mode)
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateMode, "mode", "", "auto | alter | drop (defaults to DB_MIGRATION_MODE)")
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"animai/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update the tables for users, eggs, utterances and pets in
the configured database. The memory and null drivers have no schema.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadWithLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		switch cfg.Database.Driver {
		case "memory", "null":
			fmt.Fprintf(cmd.OutOrStdout(), "driver %q keeps no schema, nothing to migrate\n", cfg.Database.Driver)
			return nil
		}
		gdb, err := db.Open(cfg.Database, logger)
		if err != nil {
			return err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		logger.Info("Migration complete", zap.String("driver", cfg.Database.Driver))
		fmt.Fprintln(cmd.OutOrStdout(), "migrated")
		return nil
	},
}

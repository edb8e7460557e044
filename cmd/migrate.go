package main

import (
	"file-storage-service/pkg/database/postgres"
	"file-storage-service/pkg/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := postgres.Migrate(ctx, cfg.Postgres); err != nil {
			return err
		}
		logger.GetLogger(ctx).Info("migrations applied")
		return nil
	},
}

package main

import (
	"github.com/deppfellow/storefront/internal/database"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, loggerService, err := loadLogging()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			return database.Migrate(cmd.Context(), log, cfg)
		},
	}
}

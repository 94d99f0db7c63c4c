package main

import (
	"github.com/spf13/cobra"

	"github.com/clinicflow/practice/internal/db/migrations"
	"github.com/clinicflow/practice/pkg/pg"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, log, err := loadApp()
			if err != nil {
				return err
			}

			pool, cfg, err := connectPostgres(cmd.Context(), log)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pg.Migrate(cmd.Context(), pool, migrations.FS, cfg, log); err != nil {
				return err
			}
			log.InfoContext(cmd.Context(), "migrations applied")
			return nil
		},
	}
}

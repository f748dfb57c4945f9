package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lead-hunter/internal/common/database"
	"lead-hunter/internal/store/leads"
)

func migrateCMD(cfgPath *string) *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if !cfg.Database.Postgres.Configured() {
				return fmt.Errorf("postgres not configured (database.postgres.host/database/user)")
			}

			pg, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			defer pg.Close()

			if statusOnly {
				states, err := leads.MigrationStatus(cmd.Context(), pg.GetDB())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), states)
			}

			applied, err := leads.Migrate(cmd.Context(), pg.GetDB())
			if err != nil {
				return err
			}
			newLogger(cfg).Info("migrations applied", map[string]interface{}{"versions": applied})
			return nil
		},
	}
	cmd.Flags().BoolVar(&statusOnly, "status", false, "print migration status instead of applying")
	return cmd
}

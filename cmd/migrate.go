package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pentesthub/pentest-hub/internal/sql"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, logger, err := commandLogger(cmd)
			if err != nil {
				return err
			}
			conn, err := openDatabase(ctx, cmd, sql.DefaultDatabaseInitializer, logger)
			if err != nil {
				return err
			}
			app := &application{conn: conn}
			defer app.Close()
			logger.Info("Database schema is up to date")
			return nil
		},
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pentesthub/pentest-hub/internal/log"
	"github.com/pentesthub/pentest-hub/pkg/types"
	"github.com/pentesthub/pentest-hub/pkg/version"
)

// errFlagRetrieval is the error message for when a flag cannot be retrieved.
var errFlagRetrieval = errors.New("error getting flag")

// errRequiredFlagEmpty is the error message for a required flag that is empty.
var errRequiredFlagEmpty = errors.New("is required and cannot be empty")

// Execute is the main entry point for pentest-hub.
func Execute(args []string) {
	// A missing .env file is fine; the environment and config file still apply.
	_ = godotenv.Load()

	rootCmd := newRootCmd()
	rootCmd.Version = fmt.Sprintf(`{"version": "%s", "commit": "%s"}`, version.Version, version.CommitSHA)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command and its subcommands.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pentest-hub",
		Short: "Track pentest engagements and generate reports",
		Long: `pentest-hub stores projects and findings, imports Burp and Nessus exports
into them and renders reports from Markdown, HTML and DOCX templates.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initializeConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default is ./pentest-hub.yaml or /etc/pentest-hub/pentest-hub.yaml)")
	flags.String("log-level", "info", "Log level: debug|info|warn|error")
	flags.String("db-type", "sqlite", "Database type: sqlite|postgres|cloudsql")
	flags.String("db-path", "data/pentest-hub.db", "SQLite database file")
	flags.String("db-host", "localhost", "Postgres host")
	flags.String("db-port", "5432", "Postgres port")
	flags.String("db-user", "", "Database user")
	flags.String("db-password", "", "Database password")
	flags.String("db-name", "pentest_hub", "Database name")
	flags.String("db-ssl-mode", "disable", "Postgres SSL mode")
	flags.String("db-instance-connection-name", "", "Cloud SQL instance connection name")
	flags.String("db-log-level", "warn", "Database log level: silent|error|warn|info")
	flags.String("storage-dir", "data/uploads", "Directory for uploaded templates and attachments")
	flags.Bool("docx-engine", true, "Fill DOCX templates; when false DOCX templates are returned unchanged")

	rootCmd.AddCommand(
		newServeCmd(),
		newImportCmd(),
		newExportCmd(),
		newMigrateCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// commandLogger builds the logger for a command from --log-level and stores it in ctx.
func commandLogger(cmd *cobra.Command) (context.Context, types.Logger, error) {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: log-level: %w", errFlagRetrieval, err)
	}
	logger, err := log.NewLoggerWithLevel(level)
	if err != nil {
		return nil, nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return log.WithLogger(ctx, logger), logger, nil
}

// requireFlags returns a PreRunE that rejects empty string flags and zero id flags.
func requireFlags(stringFlags []string, idFlags []string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		for _, flag := range stringFlags {
			value, err := cmd.Flags().GetString(flag)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", errFlagRetrieval, flag, err)
			}
			if value == "" {
				return fmt.Errorf("%s %w", flag, errRequiredFlagEmpty)
			}
		}
		for _, flag := range idFlags {
			value, err := cmd.Flags().GetUint(flag)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", errFlagRetrieval, flag, err)
			}
			if value == 0 {
				return fmt.Errorf("%s %w", flag, errRequiredFlagEmpty)
			}
		}
		return nil
	}
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pentesthub/pentest-hub/internal/sql"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "import",
		Short:   "Import a scanner export into a project",
		Example: "pentest-hub import --tool burp --project-id 1 --file burp.xml",
		PreRunE: requireFlags([]string{"tool", "file"}, []string{"project-id"}),
		RunE:    runImport,
	}
	cmd.Flags().StringP("tool", "t", "", "Scanner that produced the file: burp|nessus")
	cmd.Flags().UintP("project-id", "p", 0, "Project the findings are imported into")
	cmd.Flags().StringP("file", "f", "", "Scanner export, optionally gzip compressed")
	return cmd
}

func runImport(cmd *cobra.Command, _ []string) error {
	tool, _ := cmd.Flags().GetString("tool")          //nolint:errcheck
	projectID, _ := cmd.Flags().GetUint("project-id") //nolint:errcheck
	file, _ := cmd.Flags().GetString("file")          //nolint:errcheck

	ctx, logger, err := commandLogger(cmd)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	app, err := newApplication(ctx, cmd, sql.DefaultDatabaseInitializer, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.importer.Import(ctx, raw, tool, projectID)
	if err != nil {
		return err
	}
	out, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pentesthub/pentest-hub/internal/sql"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Render the report of a project",
		Example: "pentest-hub export --project-id 1 --template-id 2 --output-type html",
		PreRunE: requireFlags(nil, []string{"project-id", "template-id"}),
		RunE:    runExport,
	}
	cmd.Flags().UintP("project-id", "p", 0, "Project to report on")
	cmd.Flags().UintP("template-id", "t", 0, "Report template")
	cmd.Flags().StringP("output-type", "o", "", "Output type: md|html|docx; defaults to the template type")
	cmd.Flags().StringP("output-file", "f", "", "Output file; defaults to <project>_report.<type> in the current directory")
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	projectID, _ := cmd.Flags().GetUint("project-id")     //nolint:errcheck
	templateID, _ := cmd.Flags().GetUint("template-id")   //nolint:errcheck
	outputType, _ := cmd.Flags().GetString("output-type") //nolint:errcheck
	outputFile, _ := cmd.Flags().GetString("output-file") //nolint:errcheck

	ctx, logger, err := commandLogger(cmd)
	if err != nil {
		return err
	}

	app, err := newApplication(ctx, cmd, sql.DefaultDatabaseInitializer, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.exporter.Export(ctx, projectID, templateID, outputType)
	if err != nil {
		return err
	}
	if result.Passthrough {
		logger.Warn("DOCX engine disabled, template written unchanged", zap.Uint("templateID", templateID))
	}

	if outputFile == "" {
		outputFile = filepath.Base(result.Filename)
	}
	if err := os.WriteFile(outputFile, result.Content, 0o600); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), outputFile)
	return nil
}

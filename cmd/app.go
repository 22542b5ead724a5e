package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pentesthub/pentest-hub/internal/api"
	"github.com/pentesthub/pentest-hub/internal/data/db"
	"github.com/pentesthub/pentest-hub/internal/metrics"
	"github.com/pentesthub/pentest-hub/internal/sql"
	"github.com/pentesthub/pentest-hub/internal/store"
	"github.com/pentesthub/pentest-hub/pkg/importer"
	"github.com/pentesthub/pentest-hub/pkg/parser"
	"github.com/pentesthub/pentest-hub/pkg/report"
	"github.com/pentesthub/pentest-hub/pkg/types"
)

// application holds every component built from the command flags.
type application struct {
	conn           *gorm.DB
	projects       *db.GormProjectManager
	findings       *db.GormFindingManager
	tags           *db.GormTagManager
	masterFindings *db.GormMasterFindingManager
	templates      *db.GormTemplateManager
	audit          *db.GormAuditLogManager
	blobs          *store.FileStore
	parsers        *parser.ParserFactory
	importer       *importer.Importer
	renderer       *report.Renderer
	exporter       *report.Exporter
	collector      metrics.Collector
}

// openDatabase connects to the configured database and migrates the schema.
func openDatabase(ctx context.Context, cmd *cobra.Command, initializer sql.DatabaseInitializer,
	logger types.Logger) (*gorm.DB, error) {
	config, err := databaseConfig(cmd)
	if err != nil {
		return nil, err
	}
	conn, err := initializer.Initialize(ctx, config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return conn, nil
}

// newApplication opens the database and wires the repositories, the blob store,
// the importer and the report exporter.
func newApplication(ctx context.Context, cmd *cobra.Command, initializer sql.DatabaseInitializer,
	logger types.Logger) (*application, error) {
	conn, err := openDatabase(ctx, cmd, initializer, logger)
	if err != nil {
		return nil, err
	}
	app := &application{conn: conn}
	if err := app.wire(cmd); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *application) wire(cmd *cobra.Command) error {
	var err error
	if a.projects, err = db.NewGormProjectManager(a.conn); err != nil {
		return err
	}
	if a.findings, err = db.NewGormFindingManager(a.conn); err != nil {
		return err
	}
	if a.tags, err = db.NewGormTagManager(a.conn); err != nil {
		return err
	}
	if a.masterFindings, err = db.NewGormMasterFindingManager(a.conn); err != nil {
		return err
	}
	if a.templates, err = db.NewGormTemplateManager(a.conn); err != nil {
		return err
	}
	if a.audit, err = db.NewGormAuditLogManager(a.conn); err != nil {
		return err
	}

	storageDir, err := cmd.Flags().GetString("storage-dir")
	if err != nil {
		return fmt.Errorf("%w: storage-dir: %w", errFlagRetrieval, err)
	}
	if a.blobs, err = store.NewFileStore(storageDir); err != nil {
		return err
	}

	a.collector = metrics.New(metrics.Namespace)
	recorder, err := metrics.NewRecorder(a.collector)
	if err != nil {
		return err
	}

	a.parsers = parser.DefaultParserFactory()
	a.importer, err = importer.New(a.parsers, a.projects, a.findings, a.tags,
		importer.WithAuditRecorder(a.audit),
		importer.WithMetrics(recorder),
	)
	if err != nil {
		return err
	}

	docx, err := cmd.Flags().GetBool("docx-engine")
	if err != nil {
		return fmt.Errorf("%w: docx-engine: %w", errFlagRetrieval, err)
	}
	var opts []report.RendererOption
	if docx {
		opts = append(opts, report.WithDocxEngine(report.NewZipDocxEngine()))
	}
	a.renderer = report.NewRenderer(opts...)
	a.exporter, err = report.NewExporter(a.projects, a.findings,
		store.NewTemplateStore(a.templates, a.blobs), a.renderer, recorder)
	return err
}

// apiDeps returns the collaborators of the HTTP API.
func (a *application) apiDeps(logger types.Logger) api.Deps {
	return api.Deps{
		Logger:         logger,
		Importer:       a.importer,
		Exporter:       a.exporter,
		Projects:       a.projects,
		Findings:       a.findings,
		Tags:           a.tags,
		MasterFindings: a.masterFindings,
		Templates:      a.templates,
		Audit:          a.audit,
		Blobs:          a.blobs,
		Metrics:        a.collector.MetricsHandler(),
		Tools:          a.parsers.Tools(),
	}
}

// Close closes the database connection.
func (a *application) Close() {
	if a.conn == nil {
		return
	}
	if sqlDB, err := a.conn.DB(); err == nil {
		sqlDB.Close() //nolint:errcheck
	}
}

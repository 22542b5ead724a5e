package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pentesthub/pentest-hub/internal/log"
	"github.com/pentesthub/pentest-hub/pkg/types"
)

// MetricsRecorder records generated reports.
type MetricsRecorder interface {
	ReportRendered(reportType, mode string, elapsed time.Duration)
}

// Exporter loads a project, its findings and a template and renders the report.
type Exporter struct {
	projects  types.ProjectRepository
	findings  types.FindingRepository
	templates types.TemplateStore
	renderer  *Renderer
	metrics   MetricsRecorder
}

// NewExporter creates an Exporter. metrics may be nil.
func NewExporter(projects types.ProjectRepository, findings types.FindingRepository,
	templates types.TemplateStore, renderer *Renderer, metrics MetricsRecorder) (*Exporter, error) {
	if projects == nil || findings == nil || templates == nil || renderer == nil {
		return nil, fmt.Errorf("exporter: repositories and renderer are required")
	}
	return &Exporter{
		projects:  projects,
		findings:  findings,
		templates: templates,
		renderer:  renderer,
		metrics:   metrics,
	}, nil
}

// Export renders the report of a project with a template. outputType overrides
// the template type when not empty.
func (e *Exporter) Export(ctx context.Context, projectID, templateID uint, outputType string) (*RenderResult, error) {
	if outputType != "" {
		if _, err := EffectiveType(outputType, ""); err != nil {
			return nil, err
		}
	}

	project, err := e.projects.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %d: %w", projectID, err)
	}
	tmpl, err := e.templates.Get(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load template %d: %w", templateID, err)
	}
	findings, err := e.findings.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load findings: %w", err)
	}

	start := time.Now()
	result, err := e.renderer.Render(tmpl, Build(project, findings), outputType)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	log.NewLogger(ctx).Info("report generated",
		zap.Uint("project_id", projectID),
		zap.Uint("template_id", templateID),
		zap.String("type", result.Type),
		zap.String("mode", result.Mode()),
		zap.Int("findings", len(findings)),
		zap.Duration("elapsed", elapsed))
	if e.metrics != nil {
		e.metrics.ReportRendered(result.Type, result.Mode(), elapsed)
	}
	return result, nil
}

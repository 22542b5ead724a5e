// Package importer turns scanner exports into project findings, skipping findings
// the project already has.
package importer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pentesthub/pentest-hub/internal/data/model"
	"github.com/pentesthub/pentest-hub/internal/log"
	"github.com/pentesthub/pentest-hub/pkg/types"
)

// ImportedNotes is the note every imported finding is created with.
const ImportedNotes = "Imported from tool"

// ParserFactory resolves a scanner parser from a tool name.
type ParserFactory interface {
	CreateParser(tool string) (types.Parser, error)
}

// AuditRecorder stores audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry *model.AuditLog) error
}

// MetricsRecorder records completed imports.
type MetricsRecorder interface {
	ImportCompleted(tool string, imported, skipped int)
}

// Result summarizes one import.
type Result struct {
	Parsed   int `json:"parsed"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Importer persists parsed scanner findings into a project.
type Importer struct {
	parsers  ParserFactory
	projects types.ProjectRepository
	findings types.FindingRepository
	tags     types.TagRepository
	audit    AuditRecorder
	metrics  MetricsRecorder
	locks    *keyedMutex
}

// Option configures an Importer.
type Option func(*Importer)

// WithAuditRecorder records one audit entry per successful import.
func WithAuditRecorder(audit AuditRecorder) Option {
	return func(i *Importer) { i.audit = audit }
}

// WithMetrics records import counters.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(i *Importer) { i.metrics = metrics }
}

// New creates an Importer. All repositories are required.
func New(parsers ParserFactory, projects types.ProjectRepository, findings types.FindingRepository,
	tags types.TagRepository, opts ...Option) (*Importer, error) {
	if parsers == nil || projects == nil || findings == nil || tags == nil {
		return nil, fmt.Errorf("importer: parser factory and repositories are required")
	}
	i := &Importer{
		parsers:  parsers,
		projects: projects,
		findings: findings,
		tags:     tags,
		locks:    newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Import parses raw with the parser registered for tool and stores every finding
// whose (name, affected host) pair is new to the project. Existing findings are
// never modified. Imports into the same project run one at a time.
func (i *Importer) Import(ctx context.Context, raw []byte, tool string, projectID uint) (*Result, error) {
	logger := log.NewLogger(ctx)

	parser, err := i.parsers.CreateParser(tool)
	if err != nil {
		return nil, err
	}

	if _, err := i.projects.Get(ctx, projectID); err != nil {
		return nil, fmt.Errorf("failed to load project %d: %w", projectID, err)
	}

	parsed, err := parser.Parse(raw)
	if err != nil {
		return nil, err
	}

	unlock := i.locks.Lock(projectID)
	defer unlock()

	tag, err := i.findOrCreateTag(ctx, parser.DefaultCategory())
	if err != nil {
		return nil, err
	}

	result := &Result{Parsed: len(parsed)}
	for idx := range parsed {
		nf := &parsed[idx]
		_, err := i.findings.FindByKey(ctx, projectID, nf.Name, nf.AffectedHost)
		if err == nil {
			result.Skipped++
			continue
		}
		if !errors.Is(err, types.ErrFindingNotFound) {
			return result, fmt.Errorf("failed to look up finding %q: %w", nf.Name, err)
		}

		finding := newFinding(projectID, nf, tag)
		if err := i.findings.Create(ctx, finding); err != nil {
			return result, fmt.Errorf("failed to create finding %q: %w", nf.Name, err)
		}
		result.Imported++
	}

	logger.Info("import completed",
		zap.String("tool", parser.Tool()),
		zap.Uint("project_id", projectID),
		zap.Int("parsed", result.Parsed),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))

	if i.metrics != nil {
		i.metrics.ImportCompleted(parser.Tool(), result.Imported, result.Skipped)
	}
	if i.audit != nil {
		details := fmt.Sprintf("tool=%s imported=%d", parser.Tool(), result.Imported)
		entry := &model.AuditLog{
			Action:     model.AuditActionImport,
			EntityType: model.EntityProject,
			EntityID:   projectID,
			Details:    &details,
		}
		if err := i.audit.Record(ctx, entry); err != nil {
			logger.Warn("failed to record import audit entry", zap.Error(err))
		}
	}
	return result, nil
}

// findOrCreateTag returns the named tag, creating it when missing. A concurrent
// create of the same name is resolved by fetching the winner's row.
func (i *Importer) findOrCreateTag(ctx context.Context, name string) (*model.Tag, error) {
	tag, err := i.tags.FindByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, types.ErrTagNotFound) {
		return nil, fmt.Errorf("failed to look up tag %q: %w", name, err)
	}

	tag, err = i.tags.Create(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, types.ErrTagCreateRace) {
		return nil, fmt.Errorf("failed to create tag %q: %w", name, err)
	}
	tag, err = i.tags.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to re-fetch tag %q: %w", name, err)
	}
	return tag, nil
}

func newFinding(projectID uint, nf *types.NormalizedFinding, tag *model.Tag) *model.Finding {
	notes := ImportedNotes
	status := nf.Status
	if status == "" {
		status = model.StatusDraft
	}
	category := nf.Category
	if category == "" {
		category = tag.Name
	}
	return &model.Finding{
		ProjectID:      projectID,
		Name:           nf.Name,
		Severity:       nf.Severity,
		Description:    nf.Description,
		CVE:            nf.CVE,
		CWE:            nf.CWE,
		CVSS:           nf.CVSS,
		AffectedHost:   nf.AffectedHost,
		Status:         status,
		Recommendation: nf.Recommendation,
		Evidence:       nf.Evidence,
		References:     nf.References,
		Notes:          &notes,
		Category:       &category,
		Tags:           []model.Tag{*tag},
	}
}

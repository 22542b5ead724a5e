package api

import (
	"context"
	"net/http"

	"github.com/pentesthub/pentest-hub/internal/data/model"
	"github.com/pentesthub/pentest-hub/pkg/importer"
	"github.com/pentesthub/pentest-hub/pkg/report"
	"github.com/pentesthub/pentest-hub/pkg/types"
)

// ToolImporter imports scanner exports into a project.
type ToolImporter interface {
	Import(ctx context.Context, raw []byte, tool string, projectID uint) (*importer.Result, error)
}

// ReportExporter renders project reports.
type ReportExporter interface {
	Export(ctx context.Context, projectID, templateID uint, outputType string) (*report.RenderResult, error)
}

// ProjectRepository is the project storage the API needs.
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	List(ctx context.Context) ([]model.Project, error)
	Get(ctx context.Context, id uint) (*model.Project, error)
	Delete(ctx context.Context, id uint) ([]model.Attachment, error)
}

// FindingRepository is the finding storage the API needs.
type FindingRepository interface {
	Create(ctx context.Context, finding *model.Finding) error
	Get(ctx context.Context, id uint) (*model.Finding, error)
	ListByProject(ctx context.Context, projectID uint) ([]model.Finding, error)
	Update(ctx context.Context, finding *model.Finding) error
	Delete(ctx context.Context, id uint) ([]model.Attachment, error)
	AddAttachment(ctx context.Context, attachment *model.Attachment) error
	ListAttachments(ctx context.Context, findingID uint) ([]model.Attachment, error)
}

// TagRepository is the tag storage the API needs.
type TagRepository interface {
	List(ctx context.Context) ([]model.Tag, error)
	FindOrCreate(ctx context.Context, name string) (*model.Tag, error)
	GetByIDs(ctx context.Context, ids []uint) ([]model.Tag, error)
}

// MasterFindingRepository is the master finding storage the API needs.
type MasterFindingRepository interface {
	Create(ctx context.Context, finding *model.MasterFinding) error
	List(ctx context.Context) ([]model.MasterFinding, error)
	Delete(ctx context.Context, id uint) error
}

// TemplateRepository is the report template storage the API needs.
type TemplateRepository interface {
	Create(ctx context.Context, template *model.ReportTemplate) error
	List(ctx context.Context) ([]model.ReportTemplate, error)
	Delete(ctx context.Context, id uint) (*model.ReportTemplate, error)
}

// AuditRepository stores and lists audit entries.
type AuditRepository interface {
	Record(ctx context.Context, entry *model.AuditLog) error
	ListByFinding(ctx context.Context, findingID uint) ([]model.AuditLog, error)
}

// BlobStore keeps uploaded files.
type BlobStore interface {
	Put(ctx context.Context, name string, content []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// Deps are the collaborators of the HTTP API. Metrics may be nil.
type Deps struct {
	Logger         types.Logger
	Importer       ToolImporter
	Exporter       ReportExporter
	Projects       ProjectRepository
	Findings       FindingRepository
	Tags           TagRepository
	MasterFindings MasterFindingRepository
	Templates      TemplateRepository
	Audit          AuditRepository
	Blobs          BlobStore
	Metrics        http.Handler
	Tools          []string
}

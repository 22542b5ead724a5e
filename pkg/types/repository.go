package types

import (
	"context"

	"github.com/pentesthub/pentest-hub/internal/data/model"
)

// FindingRepository is the storage the importer and the exporter need for findings.
type FindingRepository interface {
	// FindByKey returns the finding of a project with exactly this name and affected host.
	// A nil affectedHost matches findings without a host. Returns ErrFindingNotFound when absent.
	FindByKey(ctx context.Context, projectID uint, name string, affectedHost *string) (*model.Finding, error)
	// Create persists a new finding together with its tags.
	Create(ctx context.Context, finding *model.Finding) error
	// ListByProject returns every finding of a project with its tags loaded.
	ListByProject(ctx context.Context, projectID uint) ([]model.Finding, error)
}

// TagRepository is the storage the importer needs for tags.
type TagRepository interface {
	// FindByName returns ErrTagNotFound when no tag has this name.
	FindByName(ctx context.Context, name string) (*model.Tag, error)
	// Create returns ErrTagCreateRace when the name is already taken.
	Create(ctx context.Context, name string) (*model.Tag, error)
}

// ProjectRepository resolves projects by id.
type ProjectRepository interface {
	// Get returns ErrProjectNotFound when the project does not exist.
	Get(ctx context.Context, id uint) (*model.Project, error)
}

// Template is a report template with its content materialized in memory.
type Template struct {
	ID      uint
	Name    string
	Type    string
	Content []byte
}

// TemplateStore resolves report templates by id.
type TemplateStore interface {
	// Get returns ErrTemplateNotFound when the template does not exist.
	Get(ctx context.Context, id uint) (*Template, error)
}

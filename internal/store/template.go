package store

import (
	"context"
	"fmt"

	"github.com/pentesthub/pentest-hub/internal/data/model"
	"github.com/pentesthub/pentest-hub/pkg/types"
)

// Blobs reads stored content by key.
type Blobs interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// TemplateRecords resolves template records by id.
type TemplateRecords interface {
	Get(ctx context.Context, id uint) (*model.ReportTemplate, error)
}

// TemplateStore joins template records with their stored content.
type TemplateStore struct {
	records TemplateRecords
	blobs   Blobs
}

// NewTemplateStore creates a new TemplateStore.
func NewTemplateStore(records TemplateRecords, blobs Blobs) *TemplateStore {
	return &TemplateStore{records: records, blobs: blobs}
}

// Get implements types.TemplateStore.
func (s *TemplateStore) Get(ctx context.Context, id uint) (*types.Template, error) {
	record, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := s.blobs.Get(ctx, record.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load content of template %d: %w", id, err)
	}
	return &types.Template{
		ID:      record.ID,
		Name:    record.Name,
		Type:    record.Type,
		Content: content,
	}, nil
}

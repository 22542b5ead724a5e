package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pentesthub/pentest-hub/internal/data/model"
	"github.com/pentesthub/pentest-hub/internal/log"
	"github.com/pentesthub/pentest-hub/pkg/types"
)

// GormTemplateManager stores report template records using a GORM DB connection.
// The template content lives in the blob store under FilePath.
type GormTemplateManager struct {
	db *gorm.DB
}

// NewGormTemplateManager creates a new GormTemplateManager.
func NewGormTemplateManager(db *gorm.DB) (*GormTemplateManager, error) {
	if db == nil {
		return nil, errNilDB
	}
	return &GormTemplateManager{db: db}, nil
}

// Create inserts a new template record.
func (manager *GormTemplateManager) Create(ctx context.Context, template *model.ReportTemplate) error {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return err
	}
	log.NewLogger(ctx).Debug("CreateTemplate", zap.String("name", template.Name), zap.String("type", template.Type))
	if err := tx.Create(template).Error; err != nil {
		return fmt.Errorf("error creating template: %w", err)
	}
	return nil
}

// List returns every template record ordered by id.
func (manager *GormTemplateManager) List(ctx context.Context) ([]model.ReportTemplate, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}
	var templates []model.ReportTemplate
	if err := tx.Order("id").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("error listing templates: %w", err)
	}
	return templates, nil
}

// Get returns the template record with the given id or types.ErrTemplateNotFound.
func (manager *GormTemplateManager) Get(ctx context.Context, id uint) (*model.ReportTemplate, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}
	var template model.ReportTemplate
	if err := tx.First(&template, id).Error; err != nil {
		return nil, notFound(err, types.ErrTemplateNotFound, "retrieving template")
	}
	return &template, nil
}

// FindByName returns the first template record with the given name or types.ErrTemplateNotFound.
func (manager *GormTemplateManager) FindByName(ctx context.Context, name string) (*model.ReportTemplate, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}
	var template model.ReportTemplate
	if err := tx.Where("name = ?", name).Order("id").First(&template).Error; err != nil {
		return nil, notFound(err, types.ErrTemplateNotFound, "retrieving template by name")
	}
	return &template, nil
}

// Delete removes a template record and returns it so the caller can remove its blob.
func (manager *GormTemplateManager) Delete(ctx context.Context, id uint) (*model.ReportTemplate, error) {
	template, err := manager.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	log.NewLogger(ctx).Debug("DeleteTemplate", zap.Uint("id", id))
	if err := manager.db.WithContext(ctx).Delete(template).Error; err != nil {
		return nil, fmt.Errorf("error deleting template: %w", err)
	}
	return template, nil
}

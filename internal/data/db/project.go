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

// GormProjectManager stores projects using a GORM DB connection.
type GormProjectManager struct {
	db *gorm.DB
}

// NewGormProjectManager creates a new GormProjectManager.
func NewGormProjectManager(db *gorm.DB) (*GormProjectManager, error) {
	if db == nil {
		return nil, errNilDB
	}
	return &GormProjectManager{db: db}, nil
}

// Create inserts a new project.
func (manager *GormProjectManager) Create(ctx context.Context, project *model.Project) error {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return err
	}
	log.NewLogger(ctx).Debug("CreateProject", zap.String("name", project.Name))
	if err := tx.Omit("Findings").Create(project).Error; err != nil {
		return fmt.Errorf("error creating project: %w", err)
	}
	return nil
}

// List returns every project ordered by id.
func (manager *GormProjectManager) List(ctx context.Context) ([]model.Project, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}
	var projects []model.Project
	if err := tx.Order("id").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("error listing projects: %w", err)
	}
	return projects, nil
}

// Get returns the project with the given id or types.ErrProjectNotFound.
func (manager *GormProjectManager) Get(ctx context.Context, id uint) (*model.Project, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}
	log.NewLogger(ctx).Debug("GetProject", zap.Uint("id", id))
	var project model.Project
	if err := tx.First(&project, id).Error; err != nil {
		return nil, notFound(err, types.ErrProjectNotFound, "retrieving project")
	}
	return &project, nil
}

// Delete removes a project with all of its findings and their attachments, tags
// links and audit entries. It returns the removed attachments so their files can
// be deleted from the blob store.
func (manager *GormProjectManager) Delete(ctx context.Context, id uint) ([]model.Attachment, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}
	log.NewLogger(ctx).Debug("DeleteProject", zap.Uint("id", id))

	var removed []model.Attachment
	err = tx.Transaction(func(tx *gorm.DB) error {
		var project model.Project
		if err := tx.First(&project, id).Error; err != nil {
			return notFound(err, types.ErrProjectNotFound, "retrieving project")
		}

		var findingIDs []uint
		if err := tx.Model(&model.Finding{}).Where("project_id = ?", id).Pluck("id", &findingIDs).Error; err != nil {
			return fmt.Errorf("failed to find findings: %w", err)
		}
		for _, findingID := range findingIDs {
			attachments, err := deleteFinding(tx, findingID)
			if err != nil {
				return err
			}
			removed = append(removed, attachments...)
		}

		if err := tx.Delete(&project).Error; err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("transaction failed: %w", err)
	}
	return removed, nil
}

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

// GormFindingManager stores findings and their attachments using a GORM DB connection.
type GormFindingManager struct {
	db *gorm.DB
}

// NewGormFindingManager creates a new GormFindingManager.
func NewGormFindingManager(db *gorm.DB) (*GormFindingManager, error) {
	if db == nil {
		return nil, errNilDB
	}
	return &GormFindingManager{db: db}, nil
}

// FindByKey returns the finding of a project whose name and affected host match exactly.
// Matching is case-sensitive. A nil affectedHost matches findings without a host.
func (manager *GormFindingManager) FindByKey(ctx context.Context, projectID uint, name string,
	affectedHost *string) (*model.Finding, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}

	query := tx.Where("project_id = ? AND name = ?", projectID, name)
	if affectedHost == nil {
		query = query.Where("affected_host IS NULL")
	} else {
		query = query.Where("affected_host = ?", *affectedHost)
	}

	var finding model.Finding
	if err := query.First(&finding).Error; err != nil {
		return nil, notFound(err, types.ErrFindingNotFound, "retrieving finding by key")
	}
	return &finding, nil
}

// Create inserts a new finding. Tags must already exist; only the links are written.
func (manager *GormFindingManager) Create(ctx context.Context, finding *model.Finding) error {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return err
	}
	log.NewLogger(ctx).Debug("CreateFinding", zap.Uint("project_id", finding.ProjectID), zap.String("name", finding.Name))
	if err := tx.Omit("Tags.*", "Attachments", "AuditLogs").Create(finding).Error; err != nil {
		return fmt.Errorf("error creating finding: %w", err)
	}
	return nil
}

// ListByProject returns the findings of a project ordered by id, with tags loaded.
func (manager *GormFindingManager) ListByProject(ctx context.Context, projectID uint) ([]model.Finding, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}
	var findings []model.Finding
	if err := tx.Preload("Tags").Where("project_id = ?", projectID).Order("id").Find(&findings).Error; err != nil {
		return nil, fmt.Errorf("error listing findings: %w", err)
	}
	return findings, nil
}

// Get returns a finding with its tags and attachments or types.ErrFindingNotFound.
func (manager *GormFindingManager) Get(ctx context.Context, id uint) (*model.Finding, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}
	var finding model.Finding
	if err := tx.Preload("Tags").Preload("Attachments").First(&finding, id).Error; err != nil {
		return nil, notFound(err, types.ErrFindingNotFound, "retrieving finding")
	}
	return &finding, nil
}

// Update overwrites the editable fields of a finding and replaces its tag set.
// The owning project and the creation time are kept.
func (manager *GormFindingManager) Update(ctx context.Context, finding *model.Finding) error {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return err
	}
	log.NewLogger(ctx).Debug("UpdateFinding", zap.Uint("id", finding.ID))

	err = tx.Transaction(func(tx *gorm.DB) error {
		var existing model.Finding
		if err := tx.First(&existing, finding.ID).Error; err != nil {
			return notFound(err, types.ErrFindingNotFound, "retrieving finding")
		}
		finding.ProjectID = existing.ProjectID
		finding.CreatedAt = existing.CreatedAt
		if finding.Status == "" {
			finding.Status = model.StatusDraft
		}

		if err := tx.Omit("Tags", "Attachments", "AuditLogs").Save(finding).Error; err != nil {
			return fmt.Errorf("error updating finding: %w", err)
		}

		association := tx.Model(finding).Omit("Tags.*").Association("Tags")
		if len(finding.Tags) == 0 {
			if err := association.Clear(); err != nil {
				return fmt.Errorf("error clearing tags: %w", err)
			}
			return nil
		}
		if err := association.Replace(finding.Tags); err != nil {
			return fmt.Errorf("error replacing tags: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

// Delete removes a finding together with its attachments, tag links and audit entries.
// It returns the removed attachments so their files can be deleted from the blob store.
func (manager *GormFindingManager) Delete(ctx context.Context, id uint) ([]model.Attachment, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}
	log.NewLogger(ctx).Debug("DeleteFinding", zap.Uint("id", id))

	var removed []model.Attachment
	err = tx.Transaction(func(tx *gorm.DB) error {
		var finding model.Finding
		if err := tx.First(&finding, id).Error; err != nil {
			return notFound(err, types.ErrFindingNotFound, "retrieving finding")
		}
		removed, err = deleteFinding(tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("transaction failed: %w", err)
	}
	return removed, nil
}

// deleteFinding deletes one finding and everything hanging off it inside tx.
func deleteFinding(tx *gorm.DB, id uint) ([]model.Attachment, error) {
	var attachments []model.Attachment
	if err := tx.Where("finding_id = ?", id).Find(&attachments).Error; err != nil {
		return nil, fmt.Errorf("failed to find attachments: %w", err)
	}
	if err := tx.Where("finding_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete attachments: %w", err)
	}
	if err := tx.Where("finding_id = ?", id).Delete(&model.AuditLog{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete audit logs: %w", err)
	}
	if err := tx.Model(&model.Finding{ID: id}).Association("Tags").Clear(); err != nil {
		return nil, fmt.Errorf("failed to unlink tags: %w", err)
	}
	if err := tx.Delete(&model.Finding{}, id).Error; err != nil {
		return nil, fmt.Errorf("failed to delete finding: %w", err)
	}
	return attachments, nil
}

// AddAttachment records an uploaded attachment for an existing finding.
func (manager *GormFindingManager) AddAttachment(ctx context.Context, attachment *model.Attachment) error {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return err
	}
	var count int64
	if err := tx.Model(&model.Finding{}).Where("id = ?", attachment.FindingID).Count(&count).Error; err != nil {
		return fmt.Errorf("error checking finding: %w", err)
	}
	if count == 0 {
		return types.ErrFindingNotFound
	}
	if err := tx.Create(attachment).Error; err != nil {
		return fmt.Errorf("error creating attachment: %w", err)
	}
	return nil
}

// ListAttachments returns the attachments of a finding ordered by id.
func (manager *GormFindingManager) ListAttachments(ctx context.Context, findingID uint) ([]model.Attachment, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}
	var attachments []model.Attachment
	if err := tx.Where("finding_id = ?", findingID).Order("id").Find(&attachments).Error; err != nil {
		return nil, fmt.Errorf("error listing attachments: %w", err)
	}
	return attachments, nil
}

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

// GormMasterFindingManager stores master findings using a GORM DB connection.
type GormMasterFindingManager struct {
	db *gorm.DB
}

// NewGormMasterFindingManager creates a new GormMasterFindingManager.
func NewGormMasterFindingManager(db *gorm.DB) (*GormMasterFindingManager, error) {
	if db == nil {
		return nil, errNilDB
	}
	return &GormMasterFindingManager{db: db}, nil
}

// Create inserts a new master finding.
func (manager *GormMasterFindingManager) Create(ctx context.Context, finding *model.MasterFinding) error {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return err
	}
	log.NewLogger(ctx).Debug("CreateMasterFinding", zap.String("title", finding.Title))
	if err := tx.Create(finding).Error; err != nil {
		return fmt.Errorf("error creating master finding: %w", err)
	}
	return nil
}

// List returns every master finding ordered by id.
func (manager *GormMasterFindingManager) List(ctx context.Context) ([]model.MasterFinding, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}
	var findings []model.MasterFinding
	if err := tx.Order("id").Find(&findings).Error; err != nil {
		return nil, fmt.Errorf("error listing master findings: %w", err)
	}
	return findings, nil
}

// Get returns the master finding with the given id or types.ErrFindingNotFound.
func (manager *GormMasterFindingManager) Get(ctx context.Context, id uint) (*model.MasterFinding, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}
	var finding model.MasterFinding
	if err := tx.First(&finding, id).Error; err != nil {
		return nil, notFound(err, types.ErrFindingNotFound, "retrieving master finding")
	}
	return &finding, nil
}

// Delete removes the master finding with the given id.
func (manager *GormMasterFindingManager) Delete(ctx context.Context, id uint) error {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return err
	}
	log.NewLogger(ctx).Debug("DeleteMasterFinding", zap.Uint("id", id))
	result := tx.Delete(&model.MasterFinding{}, id)
	if result.Error != nil {
		return fmt.Errorf("error deleting master finding: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return types.ErrFindingNotFound
	}
	return nil
}

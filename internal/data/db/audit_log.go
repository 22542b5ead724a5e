package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pentesthub/pentest-hub/internal/data/model"
)

// GormAuditLogManager stores audit entries using a GORM DB connection.
type GormAuditLogManager struct {
	db *gorm.DB
}

// NewGormAuditLogManager creates a new GormAuditLogManager.
func NewGormAuditLogManager(db *gorm.DB) (*GormAuditLogManager, error) {
	if db == nil {
		return nil, errNilDB
	}
	return &GormAuditLogManager{db: db}, nil
}

// Record inserts an audit entry.
func (manager *GormAuditLogManager) Record(ctx context.Context, entry *model.AuditLog) error {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return err
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("error recording audit log: %w", err)
	}
	return nil
}

// ListByFinding returns the audit entries of a finding, oldest first.
func (manager *GormAuditLogManager) ListByFinding(ctx context.Context, findingID uint) ([]model.AuditLog, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}
	var entries []model.AuditLog
	if err := tx.Where("finding_id = ?", findingID).Order("id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("error listing audit logs: %w", err)
	}
	return entries, nil
}

// ListByEntity returns the audit entries recorded for an entity, oldest first.
func (manager *GormAuditLogManager) ListByEntity(ctx context.Context, entityType string, entityID uint) ([]model.AuditLog, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}
	var entries []model.AuditLog
	if err := tx.Where("entity_type = ? AND entity_id = ?", entityType, entityID).Order("id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("error listing audit logs: %w", err)
	}
	return entries, nil
}

package model

import "time"

// Audit actions.
const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
	AuditActionImport = "import"
)

// Audited entity types.
const (
	EntityProject = "project"
	EntityFinding = "finding"
)

// AuditLog records a change made to an entity.
type AuditLog struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Action     string    `json:"action" gorm:"not null"`
	EntityType string    `json:"entity_type" gorm:"not null"`
	EntityID   uint      `json:"entity_id" gorm:"not null"`
	User       *string   `json:"user"`
	Timestamp  time.Time `json:"timestamp" gorm:"autoCreateTime"`
	Details    *string   `json:"details" gorm:"type:text"`
	FindingID  *uint     `json:"finding_id" gorm:"index"`
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// StatusDraft is the status a finding gets when none is set.
const StatusDraft = "draft"

// Finding is a single security issue reported for a project.
type Finding struct {
	ID             uint         `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID      uint         `json:"project_id" gorm:"not null;index:idx_finding_key,priority:1"`
	Name           string       `json:"name" gorm:"not null;index:idx_finding_key,priority:2"`
	Severity       string       `json:"severity" gorm:"not null"`
	Description    *string      `json:"description" gorm:"type:text"`
	CVE            *string      `json:"cve"`
	CWE            *string      `json:"cwe"`
	CVSS           *float64     `json:"cvss"`
	AffectedHost   *string      `json:"affected_host" gorm:"index:idx_finding_key,priority:3"`
	Status         string       `json:"status" gorm:"not null;default:draft"`
	Recommendation *string      `json:"recommendation" gorm:"type:text"`
	Evidence       *string      `json:"evidence" gorm:"type:text"`
	References     *string      `json:"references" gorm:"type:text"`
	Notes          *string      `json:"notes" gorm:"type:text"`
	Category       *string      `json:"category"`
	CreatedAt      time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
	Tags           []Tag        `json:"tags" gorm:"many2many:finding_tags"`
	Attachments    []Attachment `json:"attachments" gorm:"foreignKey:FindingID;constraint:OnDelete:CASCADE"`
	AuditLogs      []AuditLog   `json:"-" gorm:"foreignKey:FindingID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate defaults the status of new findings to draft.
func (f *Finding) BeforeCreate(_ *gorm.DB) error {
	if f.Status == "" {
		f.Status = StatusDraft
	}
	return nil
}

// TagNames returns the tag names in the order they were loaded.
func (f *Finding) TagNames() []string {
	names := make([]string, 0, len(f.Tags))
	for _, tag := range f.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// Tag labels findings. Names are unique.
type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"not null;uniqueIndex"`
}

// Attachment is a file uploaded as evidence for a finding.
type Attachment struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	FindingID  uint      `json:"finding_id" gorm:"not null;index"`
	Filename   string    `json:"filename" gorm:"not null"`
	FilePath   string    `json:"filepath" gorm:"not null"`
	UploadedAt time.Time `json:"uploaded_at" gorm:"autoCreateTime"`
}

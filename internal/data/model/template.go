package model

import "time"

// ReportTemplate is an uploaded report template. FilePath is the key of the
// template content in the blob store. Type is stored as given; only docx, md
// and html can be rendered.
type ReportTemplate struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"not null"`
	Description *string   `json:"description" gorm:"type:text"`
	FilePath    string    `json:"file_path" gorm:"not null"`
	Type        string    `json:"type" gorm:"not null"`
	IsSample    bool      `json:"is_sample" gorm:"default:false"`
	UploadedAt  time.Time `json:"uploaded_at" gorm:"autoCreateTime"`
}

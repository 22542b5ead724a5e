package model

// Project is a pentest engagement. Deleting a project deletes its findings.
type Project struct {
	ID              uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name            string    `json:"name" gorm:"not null"`
	Client          *string   `json:"client"`
	AssessmentDates *string   `json:"assessment_dates"`
	Scope           *string   `json:"scope" gorm:"type:text"`
	TeamMembers     *string   `json:"team_members"`
	Metadata        *string   `json:"metadata" gorm:"type:text"`
	Findings        []Finding `json:"findings,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

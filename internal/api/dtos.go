package api

import (
	"github.com/pentesthub/pentest-hub/internal/data/model"
)

type projectRequest struct {
	Name            string  `json:"name" validate:"required"`
	Client          *string `json:"client"`
	AssessmentDates *string `json:"assessment_dates"`
	Scope           *string `json:"scope"`
	TeamMembers     *string `json:"team_members"`
	Metadata        *string `json:"metadata"`
}

func (r projectRequest) toModel() *model.Project {
	return &model.Project{
		Name:            r.Name,
		Client:          r.Client,
		AssessmentDates: r.AssessmentDates,
		Scope:           r.Scope,
		TeamMembers:     r.TeamMembers,
		Metadata:        r.Metadata,
	}
}

type findingRequest struct {
	ProjectID      uint     `json:"project_id"`
	Name           string   `json:"name" validate:"required"`
	Severity       string   `json:"severity" validate:"required"`
	Description    *string  `json:"description"`
	CVE            *string  `json:"cve"`
	CWE            *string  `json:"cwe"`
	CVSS           *float64 `json:"cvss" validate:"omitempty,gte=0,lte=10"`
	AffectedHost   *string  `json:"affected_host"`
	Status         string   `json:"status"`
	Recommendation *string  `json:"recommendation"`
	Evidence       *string  `json:"evidence"`
	References     *string  `json:"references"`
	Notes          *string  `json:"notes"`
	Category       *string  `json:"category"`
	TagIDs         []uint   `json:"tag_ids"`
}

func (r findingRequest) toModel(tags []model.Tag) *model.Finding {
	return &model.Finding{
		ProjectID:      r.ProjectID,
		Name:           r.Name,
		Severity:       r.Severity,
		Description:    r.Description,
		CVE:            r.CVE,
		CWE:            r.CWE,
		CVSS:           r.CVSS,
		AffectedHost:   r.AffectedHost,
		Status:         r.Status,
		Recommendation: r.Recommendation,
		Evidence:       r.Evidence,
		References:     r.References,
		Notes:          r.Notes,
		Category:       r.Category,
		Tags:           tags,
	}
}

type tagRequest struct {
	Name string `json:"name" validate:"required"`
}

type masterFindingRequest struct {
	Title             string   `json:"title" validate:"required"`
	TechnicalAnalysis *string  `json:"technical_analysis"`
	Impact            *string  `json:"impact"`
	Frameworks        []string `json:"frameworks" validate:"dive,required,excludesall=0x2C"`
	Recommendations   *string  `json:"recommendations"`
	References        *string  `json:"references"`
}

func (r masterFindingRequest) toModel() *model.MasterFinding {
	return &model.MasterFinding{
		Title:             r.Title,
		TechnicalAnalysis: r.TechnicalAnalysis,
		Impact:            r.Impact,
		Frameworks:        model.StringList(r.Frameworks),
		Recommendations:   r.Recommendations,
		References:        r.References,
	}
}

type templateForm struct {
	Name        string `form:"name" validate:"required"`
	Type        string `form:"type" validate:"required"`
	Description string `form:"description"`
}

type importForm struct {
	Tool      string `form:"tool" validate:"required"`
	ProjectID uint   `form:"project_id" validate:"required"`
}

type exportForm struct {
	ProjectID  uint   `form:"project_id" validate:"required"`
	TemplateID uint   `form:"template_id" validate:"required"`
	OutputType string `form:"output_type"`
}

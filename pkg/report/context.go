// Package report renders project findings into downloadable reports.
package report

import (
	"strconv"

	"github.com/pentesthub/pentest-hub/internal/data/model"
)

// ProjectView is a project flattened to plain strings. Absent values are empty.
type ProjectView struct {
	ID              uint
	Name            string
	Client          string
	AssessmentDates string
	Scope           string
	TeamMembers     string
	Metadata        string
}

// FindingView is a finding flattened to plain strings. Absent values are empty.
type FindingView struct {
	ID             uint
	Name           string
	Severity       string
	Description    string
	CVE            string
	CWE            string
	CVSS           string
	AffectedHost   string
	Status         string
	Recommendation string
	Evidence       string
	References     string
	Notes          string
	Category       string
	Tags           []string
}

// RenderContext is everything a template can reference.
type RenderContext struct {
	Project  ProjectView
	Findings []FindingView
}

// Build flattens a project and its findings. Findings keep their order and are
// not filtered. Tags keep the order the repository returned them in.
func Build(project *model.Project, findings []model.Finding) *RenderContext {
	rc := &RenderContext{
		Project: ProjectView{
			ID:              project.ID,
			Name:            project.Name,
			Client:          deref(project.Client),
			AssessmentDates: deref(project.AssessmentDates),
			Scope:           deref(project.Scope),
			TeamMembers:     deref(project.TeamMembers),
			Metadata:        deref(project.Metadata),
		},
		Findings: make([]FindingView, 0, len(findings)),
	}
	for i := range findings {
		f := &findings[i]
		rc.Findings = append(rc.Findings, FindingView{
			ID:             f.ID,
			Name:           f.Name,
			Severity:       f.Severity,
			Description:    deref(f.Description),
			CVE:            deref(f.CVE),
			CWE:            deref(f.CWE),
			CVSS:           formatCVSS(f.CVSS),
			AffectedHost:   deref(f.AffectedHost),
			Status:         f.Status,
			Recommendation: deref(f.Recommendation),
			Evidence:       deref(f.Evidence),
			References:     deref(f.References),
			Notes:          deref(f.Notes),
			Category:       deref(f.Category),
			Tags:           f.TagNames(),
		})
	}
	return rc
}

// fields returns the values text templates resolve placeholders against.
func (rc *RenderContext) fields(findingsSection string) map[string]interface{} {
	findingList := make([]map[string]interface{}, 0, len(rc.Findings))
	for _, f := range rc.Findings {
		findingList = append(findingList, f.fields())
	}
	return map[string]interface{}{
		"project":      rc.Project.fields(),
		"findings":     findingsSection,
		"finding_list": findingList,
	}
}

func (p ProjectView) fields() map[string]interface{} {
	return map[string]interface{}{
		"id":               p.ID,
		"name":             p.Name,
		"client":           p.Client,
		"assessment_dates": p.AssessmentDates,
		"scope":            p.Scope,
		"team_members":     p.TeamMembers,
		"metadata":         p.Metadata,
	}
}

func (f FindingView) fields() map[string]interface{} {
	return map[string]interface{}{
		"id":             f.ID,
		"name":           f.Name,
		"severity":       f.Severity,
		"description":    f.Description,
		"cve":            f.CVE,
		"cwe":            f.CWE,
		"cvss":           f.CVSS,
		"affected_host":  f.AffectedHost,
		"status":         f.Status,
		"recommendation": f.Recommendation,
		"evidence":       f.Evidence,
		"references":     f.References,
		"notes":          f.Notes,
		"category":       f.Category,
		"tags":           f.Tags,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatCVSS(score *float64) string {
	if score == nil {
		return ""
	}
	return strconv.FormatFloat(*score, 'f', -1, 64)
}

package report

import (
	"strings"
)

// notAvailable stands in for absent values in generated findings sections.
const notAvailable = "N/A"

type paragraph struct {
	label, value string
}

func (f FindingView) paragraphs() []paragraph {
	return []paragraph{
		{"Description", f.Description},
		{"Recommendation", f.Recommendation},
		{"Evidence", f.Evidence},
		{"References", f.References},
		{"Notes", f.Notes},
	}
}

func (f FindingView) bullets() []paragraph {
	return []paragraph{
		{"Severity", f.Severity},
		{"CVE", f.CVE},
		{"CVSS", f.CVSS},
		{"CWE", f.CWE},
		{"Affected Host", f.AffectedHost},
		{"Status", f.Status},
		{"Tags", strings.Join(f.Tags, ", ")},
		{"Category", f.Category},
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

// MarkdownFindings renders one fixed-layout Markdown block per finding.
func MarkdownFindings(rc *RenderContext) string {
	var b strings.Builder
	for _, f := range rc.Findings {
		b.WriteString("### " + f.Name + "\n\n")
		for _, item := range f.bullets() {
			b.WriteString("- " + item.label + ": " + orNA(item.value) + "\n")
		}
		b.WriteString("\n")
		for _, p := range f.paragraphs() {
			b.WriteString("**" + p.label + ":**\n\n" + orNA(p.value) + "\n\n")
		}
		b.WriteString("---\n\n")
	}
	return b.String()
}

// TextFindings renders the plain-text variant of MarkdownFindings used in
// documents that cannot carry Markdown.
func TextFindings(rc *RenderContext) string {
	var b strings.Builder
	for _, f := range rc.Findings {
		b.WriteString(f.Name + "\n")
		for _, item := range f.bullets() {
			b.WriteString(item.label + ": " + orNA(item.value) + "\n")
		}
		b.WriteString("\n")
		for _, p := range f.paragraphs() {
			b.WriteString(p.label + ":\n" + orNA(p.value) + "\n\n")
		}
		b.WriteString(strings.Repeat("-", 40) + "\n\n")
	}
	return b.String()
}

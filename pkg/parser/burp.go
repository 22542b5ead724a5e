package parser

import (
	"encoding/xml"
	"fmt"

	"github.com/pentesthub/pentest-hub/pkg/types"
)

// ToolBurp is the tool name of Burp Suite XML exports.
const ToolBurp = "burp"

// burpIssue is one <issue> element of a Burp Suite export. Repeated children
// keep the first occurrence.
type burpIssue struct {
	Name                  []string `xml:"name"`
	Severity              []string `xml:"severity"`
	IssueBackground       []string `xml:"issueBackground"`
	CWE                   []string `xml:"cwe"`
	Host                  []string `xml:"host"`
	RemediationBackground []string `xml:"remediationBackground"`
	IssueDetail           []string `xml:"issueDetail"`
	References            []string `xml:"references"`
}

// BurpParser parses Burp Suite XML issue exports.
type BurpParser struct{}

// NewBurpParser creates a new BurpParser.
func NewBurpParser() *BurpParser {
	return &BurpParser{}
}

// Tool implements types.Parser.
func (p *BurpParser) Tool() string { return ToolBurp }

// DefaultCategory implements types.Parser.
func (p *BurpParser) DefaultCategory() string { return types.CategoryWeb }

// Parse returns one finding per <issue> element found at any depth.
// Burp does not report CVE or CVSS values.
func (p *BurpParser) Parse(raw []byte) ([]types.NormalizedFinding, error) {
	var findings []types.NormalizedFinding
	err := forEachElement(raw, "issue", func(d *xml.Decoder, start xml.StartElement) error {
		var issue burpIssue
		if err := d.DecodeElement(&issue, &start); err != nil {
			return fmt.Errorf("%w: %v", types.ErrMalformedInput, err)
		}
		findings = append(findings, types.NormalizedFinding{
			Name:           value(first(issue.Name)),
			Severity:       value(first(issue.Severity)),
			Description:    first(issue.IssueBackground),
			CWE:            first(issue.CWE),
			AffectedHost:   first(issue.Host),
			Recommendation: first(issue.RemediationBackground),
			Evidence:       first(issue.IssueDetail),
			References:     first(issue.References),
			Category:       types.CategoryWeb,
			Status:         types.StatusDraft,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse burp export: %w", err)
	}
	return findings, nil
}

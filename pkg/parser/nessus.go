package parser

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/pentesthub/pentest-hub/pkg/types"
)

// ToolNessus is the tool name of Nessus XML exports.
const ToolNessus = "nessus"

// nessusReportItem is one <ReportItem> element of a Nessus export. Name, severity
// and host are attributes; everything else is read from child elements.
type nessusReportItem struct {
	PluginName    *string  `xml:"pluginName,attr"`
	Severity      *string  `xml:"severity,attr"`
	Host          *string  `xml:"host,attr"`
	Description   []string `xml:"description"`
	CVE           []string `xml:"cve"`
	CWE           []string `xml:"cwe"`
	CVSSBaseScore []string `xml:"cvss_base_score"`
	PluginOutput  []string `xml:"plugin_output"`
	Solution      []string `xml:"solution"`
	SeeAlso       []string `xml:"see_also"`
}

// NessusParser parses Nessus XML exports.
type NessusParser struct{}

// NewNessusParser creates a new NessusParser.
func NewNessusParser() *NessusParser {
	return &NessusParser{}
}

// Tool implements types.Parser.
func (p *NessusParser) Tool() string { return ToolNessus }

// DefaultCategory implements types.Parser.
func (p *NessusParser) DefaultCategory() string { return types.CategoryInfrastructure }

// Parse returns one finding per <ReportItem> element found at any depth.
func (p *NessusParser) Parse(raw []byte) ([]types.NormalizedFinding, error) {
	var findings []types.NormalizedFinding
	err := forEachElement(raw, "ReportItem", func(d *xml.Decoder, start xml.StartElement) error {
		var item nessusReportItem
		if err := d.DecodeElement(&item, &start); err != nil {
			return fmt.Errorf("%w: %v", types.ErrMalformedInput, err)
		}
		cvss, err := parseCVSS(first(item.CVSSBaseScore))
		if err != nil {
			return err
		}
		findings = append(findings, types.NormalizedFinding{
			Name:           value(item.PluginName),
			Severity:       value(item.Severity),
			Description:    first(item.Description),
			CVE:            first(item.CVE),
			CWE:            first(item.CWE),
			CVSS:           cvss,
			AffectedHost:   item.Host,
			Recommendation: first(item.Solution),
			Evidence:       first(item.PluginOutput),
			References:     first(item.SeeAlso),
			Category:       types.CategoryInfrastructure,
			Status:         types.StatusDraft,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse nessus export: %w", err)
	}
	return findings, nil
}

// parseCVSS converts a cvss_base_score value. Absent or empty values yield nil.
// Anything else must be a number, optionally surrounded by whitespace, so a
// whitespace-only value is malformed.
func parseCVSS(raw *string) (*float64, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid cvss_base_score %q", types.ErrMalformedInput, *raw)
	}
	return &score, nil
}

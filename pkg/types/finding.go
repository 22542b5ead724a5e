package types

// Finding statuses.
const (
	StatusDraft = "draft"
)

// Default categories assigned by the scanner parsers.
const (
	CategoryWeb            = "Web"
	CategoryInfrastructure = "Infrastructure"
)

// NormalizedFinding is the tool-independent record every scanner parser produces.
// Optional fields are nil when the scanner did not report them.
type NormalizedFinding struct {
	Name           string
	Severity       string
	Description    *string
	CVE            *string
	CWE            *string
	CVSS           *float64
	AffectedHost   *string
	Recommendation *string
	Evidence       *string
	References     *string
	Category       string
	Status         string
}

// Parser decodes the raw export of one scanner into normalized findings.
type Parser interface {
	// Tool returns the lower-case tool name the parser is registered under.
	Tool() string
	// DefaultCategory returns the category assigned to every finding the parser emits.
	DefaultCategory() string
	// Parse decodes raw scanner output. It fails with ErrMalformedInput when the
	// document is not well-formed.
	Parse(raw []byte) ([]NormalizedFinding, error)
}

package report

import (
	"fmt"
	"strings"

	"github.com/pentesthub/pentest-hub/pkg/types"
)

// Report types.
const (
	TypeMarkdown = "md"
	TypeHTML     = "html"
	TypeDocx     = "docx"
)

// Report delivery modes.
const (
	ModeRendered    = "rendered"
	ModePassthrough = "passthrough"
)

var contentTypes = map[string]string{
	TypeMarkdown: "text/markdown",
	TypeHTML:     "text/html",
	TypeDocx:     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// RenderResult is a generated report.
type RenderResult struct {
	Content     []byte
	Filename    string
	ContentType string
	// Type is the effective report type.
	Type string
	// Passthrough is set when the DOCX template was returned unmodified because no
	// DOCX engine is available.
	Passthrough bool
}

// Mode returns ModePassthrough or ModeRendered.
func (r *RenderResult) Mode() string {
	if r.Passthrough {
		return ModePassthrough
	}
	return ModeRendered
}

// RendererCapability describes what a Renderer can produce.
type RendererCapability struct {
	Docx bool
}

// DocxMode returns the mode DOCX reports are produced in.
func (c RendererCapability) DocxMode() string {
	if c.Docx {
		return ModeRendered
	}
	return ModePassthrough
}

// Renderer turns a template and a RenderContext into a report.
type Renderer struct {
	docx DocxEngine
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithDocxEngine enables DOCX rendering. Without an engine DOCX templates are
// passed through unmodified.
func WithDocxEngine(engine DocxEngine) RendererOption {
	return func(r *Renderer) { r.docx = engine }
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Capability reports whether DOCX templates are filled or passed through.
func (r *Renderer) Capability() RendererCapability {
	return RendererCapability{Docx: r.docx != nil}
}

// EffectiveType returns the type a report is produced in: the requested type
// when given, the template type otherwise. Types other than md, html and docx
// fail with types.ErrUnsupportedReportType.
func EffectiveType(requested, templateType string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(requested))
	if t == "" {
		t = strings.ToLower(strings.TrimSpace(templateType))
	}
	if _, ok := contentTypes[t]; !ok {
		return "", fmt.Errorf("%w: %q", types.ErrUnsupportedReportType, t)
	}
	return t, nil
}

// Render produces the report for rc from tmpl in the effective type.
func (r *Renderer) Render(tmpl *types.Template, rc *RenderContext, outputType string) (*RenderResult, error) {
	reportType, err := EffectiveType(outputType, tmpl.Type)
	if err != nil {
		return nil, err
	}

	result := &RenderResult{
		Filename:    rc.Project.Name + "_report." + reportType,
		ContentType: contentTypes[reportType],
		Type:        reportType,
	}

	switch reportType {
	case TypeMarkdown:
		result.Content, err = executeText(tmpl.Name, string(tmpl.Content), rc.fields(MarkdownFindings(rc)))
	case TypeHTML:
		result.Content, err = executeHTML(tmpl.Name, string(tmpl.Content), rc.fields(MarkdownFindings(rc)))
	case TypeDocx:
		if r.docx == nil {
			result.Content = tmpl.Content
			result.Passthrough = true
			return result, nil
		}
		result.Content, err = r.docx.Fill(tmpl.Content, docxFields(rc))
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func syntaxError(err error) error {
	return fmt.Errorf("%w: %v", types.ErrTemplateSyntax, err)
}

package report

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/pentesthub/pentest-hub/pkg/types"
)

// DocxEngine fills {{field}} placeholders of a DOCX template.
type DocxEngine interface {
	Fill(template []byte, fields map[string]string) ([]byte, error)
}

// ZipDocxEngine substitutes placeholders in the main document part, headers and
// footers of a DOCX package. A placeholder is only found when Word kept it within
// a single text run.
type ZipDocxEngine struct{}

// NewZipDocxEngine creates a new ZipDocxEngine.
func NewZipDocxEngine() *ZipDocxEngine {
	return &ZipDocxEngine{}
}

// Limits on the uncompressed size of a DOCX template, per part and in total.
var (
	maxDocxPartSize  int64 = 64 << 20
	maxDocxTotalSize int64 = 256 << 20
)

var docxPlaceholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)\s*\}\}`)

// isFillablePart reports whether a package part can carry placeholders.
func isFillablePart(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	if path.Dir(name) != "word" || path.Ext(name) != ".xml" {
		return false
	}
	base := path.Base(name)
	return strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer")
}

// Fill implements DocxEngine.
func (e *ZipDocxEngine) Fill(template []byte, fields map[string]string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx package: %v", types.ErrTemplateSyntax, err)
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	remaining := maxDocxTotalSize
	for _, f := range zr.File {
		limit := min(maxDocxPartSize, remaining)
		content, err := readZipFile(f, limit)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read %s: %v", types.ErrTemplateSyntax, f.Name, err)
		}
		remaining -= int64(len(content))
		if isFillablePart(f.Name) {
			content, err = fillPart(content, fields)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
		}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: f.Method, Modified: f.Modified})
		if err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
		if _, err := w.Write(content); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish docx package: %w", err)
	}
	return out.Bytes(), nil
}

// errPartTooLarge is returned for a package part that expands beyond the size limits.
var errPartTooLarge = errors.New("part exceeds the size limit")

// readZipFile reads a part of at most limit uncompressed bytes. The declared
// size is checked first but not trusted.
func readZipFile(f *zip.File, limit int64) ([]byte, error) {
	if f.UncompressedSize64 > uint64(limit) {
		return nil, errPartTooLarge
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	content, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > limit {
		return nil, errPartTooLarge
	}
	return content, nil
}

// fillPart replaces every placeholder in an XML part. Unknown names fail with
// types.ErrTemplateSyntax.
func fillPart(content []byte, fields map[string]string) ([]byte, error) {
	var missing string
	filled := docxPlaceholderRe.ReplaceAllFunc(content, func(m []byte) []byte {
		name := string(docxPlaceholderRe.FindSubmatch(m)[1])
		value, ok := fields[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return m
		}
		return []byte(runText(value))
	})
	if missing != "" {
		return nil, fmt.Errorf("%w: undefined placeholder %q", types.ErrTemplateSyntax, missing)
	}
	return filled, nil
}

// runText escapes value for a <w:t> element and turns newlines into line breaks
// within the same run.
func runText(value string) string {
	lines := strings.Split(strings.ReplaceAll(value, "\r\n", "\n"), "\n")
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString(`</w:t><w:br/><w:t xml:space="preserve">`)
		}
		_ = xml.EscapeText(&b, []byte(line))
	}
	return b.String()
}

// docxFields returns the placeholder values available to DOCX templates.
func docxFields(rc *RenderContext) map[string]string {
	fields := map[string]string{"findings": TextFindings(rc)}
	for k, v := range rc.Project.fields() {
		fields["project."+k] = fmt.Sprint(v)
	}
	return fields
}

package parser

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pentesthub/pentest-hub/pkg/types"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return raw
}

func gzipBytes(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestBurpParser_Parse(t *testing.T) {
	findings, err := NewBurpParser().Parse(readTestdata(t, "burp.xml"))
	require.NoError(t, err)

	want := []types.NormalizedFinding{
		{
			Name:           "SQL injection",
			Severity:       "High",
			Description:    strPtr("SQL injection vulnerabilities arise when user-controllable data is incorporated into database queries."),
			CWE:            strPtr("CWE-89"),
			AffectedHost:   strPtr("https://app.example.test"),
			Recommendation: strPtr("Use parameterized queries."),
			Evidence:       strPtr("The username parameter appears to be vulnerable."),
			References:     strPtr("https://portswigger.net/web-security/sql-injection"),
			Category:       types.CategoryWeb,
			Status:         types.StatusDraft,
		},
		{
			Name:         "Cross-site scripting (reflected)",
			Severity:     "Medium",
			AffectedHost: strPtr("https://app.example.test"),
			Category:     types.CategoryWeb,
			Status:       types.StatusDraft,
		},
	}
	if diff := cmp.Diff(want, findings); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestNessusParser_Parse(t *testing.T) {
	findings, err := NewNessusParser().Parse(readTestdata(t, "nessus.xml"))
	require.NoError(t, err)

	want := []types.NormalizedFinding{
		{
			Name:           "SSH Protocol Version 1 Session Key Retrieval",
			Severity:       "3",
			Description:    strPtr("The remote SSH daemon supports connections made using version 1.33 and/or 1.5 of the SSH protocol."),
			CVE:            strPtr("CVE-2001-0361"),
			CWE:            strPtr("CWE-310"),
			CVSS:           floatPtr(7.5),
			AffectedHost:   strPtr("10.0.0.1"),
			Recommendation: strPtr("Disable compatibility with version 1 of the SSH protocol."),
			Evidence:       strPtr("SSHv1 supported"),
			References:     strPtr("https://www.openssh.com/"),
			Category:       types.CategoryInfrastructure,
			Status:         types.StatusDraft,
		},
		{
			Name:         "Nessus Scan Information",
			Severity:     "0",
			Description:  strPtr("Information about the scan."),
			AffectedHost: strPtr("10.0.0.1"),
			Category:     types.CategoryInfrastructure,
			Status:       types.StatusDraft,
		},
	}
	if diff := cmp.Diff(want, findings); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestNessusParser_CVSS(t *testing.T) {
	tests := []struct {
		name    string
		item    string
		want    *float64
		wantErr bool
	}{
		{name: "absent", item: `<ReportItem pluginName="a" severity="1" host="h"/>`},
		{name: "empty", item: `<ReportItem pluginName="a" severity="1" host="h"><cvss_base_score></cvss_base_score></ReportItem>`},
		{name: "whitespace", item: `<ReportItem pluginName="a" severity="1" host="h"><cvss_base_score>  </cvss_base_score></ReportItem>`, wantErr: true},
		{name: "number", item: `<ReportItem pluginName="a" severity="1" host="h"><cvss_base_score> 9.8 </cvss_base_score></ReportItem>`, want: floatPtr(9.8)},
		{name: "zero", item: `<ReportItem pluginName="a" severity="1" host="h"><cvss_base_score>0</cvss_base_score></ReportItem>`, want: floatPtr(0)},
		{name: "not a number", item: `<ReportItem pluginName="a" severity="1" host="h"><cvss_base_score>high</cvss_base_score></ReportItem>`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, err := NewNessusParser().Parse([]byte("<NessusClientData_v2>" + tt.item + "</NessusClientData_v2>"))
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrMalformedInput)
				return
			}
			require.NoError(t, err)
			require.Len(t, findings, 1)
			if diff := cmp.Diff(tt.want, findings[0].CVSS); diff != "" {
				t.Errorf("cvss mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNessusParser_MissingAttributes(t *testing.T) {
	findings, err := NewNessusParser().Parse([]byte(`<r><ReportItem><description>d</description></ReportItem></r>`))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "", findings[0].Name)
	assert.Equal(t, "", findings[0].Severity)
	assert.Nil(t, findings[0].AffectedHost)
	assert.Equal(t, "d", *findings[0].Description)
}

func TestParse_NestedElements(t *testing.T) {
	raw := []byte(`<root><a><b><issue><name>deep</name></issue></b></a><issue><name>shallow</name></issue></root>`)
	findings, err := NewBurpParser().Parse(raw)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "deep", findings[0].Name)
	assert.Equal(t, "shallow", findings[1].Name)
}

func TestParse_EmptyDocument(t *testing.T) {
	findings, err := NewBurpParser().Parse([]byte(`<issues/>`))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestParse_EmptyElementIsPresent(t *testing.T) {
	findings, err := NewBurpParser().Parse([]byte(`<issues><issue><name>x</name><cwe></cwe></issue></issues>`))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.NotNil(t, findings[0].CWE)
	assert.Equal(t, "", *findings[0].CWE)
	assert.Nil(t, findings[0].Evidence)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty input", raw: ""},
		{name: "not xml", raw: "hello world"},
		{name: "unclosed root", raw: "<issues><issue><name>x</name></issue>"},
		{name: "mismatched tags", raw: "<issues><issue></name></issue></issues>"},
		{name: "two roots", raw: "<a/><b/>"},
		{name: "truncated gzip", raw: string([]byte{0x1f, 0x8b, 0x08})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, p := range []types.Parser{NewBurpParser(), NewNessusParser()} {
				_, err := p.Parse([]byte(tt.raw))
				if !errors.Is(err, types.ErrMalformedInput) {
					t.Errorf("%s: expected ErrMalformedInput, got %v", p.Tool(), err)
				}
			}
		})
	}
}

func TestParse_Gzip(t *testing.T) {
	raw := readTestdata(t, "burp.xml")
	plain, err := NewBurpParser().Parse(raw)
	require.NoError(t, err)
	compressed, err := NewBurpParser().Parse(gzipBytes(t, raw))
	require.NoError(t, err)
	if diff := cmp.Diff(plain, compressed); diff != "" {
		t.Errorf("gzip findings mismatch (-plain +gzip):\n%s", diff)
	}
}

func TestParse_GzipSizeLimit(t *testing.T) {
	old := maxDecompressedSize
	t.Cleanup(func() { maxDecompressedSize = old })

	raw := readTestdata(t, "burp.xml")
	tests := []struct {
		name    string
		limit   int64
		input   []byte
		wantErr bool
	}{
		{name: "exactly at limit", limit: int64(len(raw)), input: raw},
		{name: "one byte over limit", limit: int64(len(raw)) - 1, input: raw, wantErr: true},
		{
			name:    "padding expands far beyond limit",
			limit:   1 << 20,
			input:   []byte("<issues>" + strings.Repeat(" ", 8<<20) + "</issues>"),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxDecompressedSize = tt.limit
			_, err := NewBurpParser().Parse(gzipBytes(t, tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrMalformedInput)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParserFactory(t *testing.T) {
	factory := DefaultParserFactory()

	tests := []struct {
		tool     string
		want     string
		category string
		wantErr  bool
	}{
		{tool: "burp", want: ToolBurp, category: types.CategoryWeb},
		{tool: "Burp", want: ToolBurp, category: types.CategoryWeb},
		{tool: "NESSUS", want: ToolNessus, category: types.CategoryInfrastructure},
		{tool: " nessus ", want: ToolNessus, category: types.CategoryInfrastructure},
		{tool: "zap", wantErr: true},
		{tool: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			p, err := factory.CreateParser(tt.tool)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrUnsupportedTool)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Tool())
			assert.Equal(t, tt.category, p.DefaultCategory())
		})
	}

	assert.Equal(t, []string{"burp", "nessus"}, factory.Tools())
}

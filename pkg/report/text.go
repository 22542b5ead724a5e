package report

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/pentesthub/pentest-hub/pkg/types"
)

// placeholderRe matches a bare dotted path such as {{ project.name }} or {{findings}}.
var placeholderRe = regexp.MustCompile(`\{\{(-?\s*)([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)(\s*-?)\}\}`)

// actionKeywords are the bare actions that close or continue a block.
var actionKeywords = map[string]bool{"end": true, "else": true, "break": true, "continue": true}

// normalizePlaceholders rewrites bare paths whose root is a key of data into
// template field references, so {{project.name}} becomes {{.project.name}}.
// Any other bare path is an undefined placeholder and fails with
// types.ErrTemplateSyntax. Functions stay reachable through explicit
// pipelines such as {{ .project.name | upper }}.
func normalizePlaceholders(src string, data map[string]interface{}) (string, error) {
	var missing string
	out := placeholderRe.ReplaceAllStringFunc(src, func(m string) string {
		parts := placeholderRe.FindStringSubmatch(m)
		root := parts[2]
		if i := strings.IndexByte(root, '.'); i >= 0 {
			root = root[:i]
		}
		if _, ok := data[root]; !ok {
			if !actionKeywords[parts[2]] && missing == "" {
				missing = parts[2]
			}
			return m
		}
		return "{{" + parts[1] + "." + parts[2] + parts[3] + "}}"
	})
	if missing != "" {
		return "", fmt.Errorf("%w: undefined placeholder %q", types.ErrTemplateSyntax, missing)
	}
	return out, nil
}

// txtFuncMap returns the sprig functions minus those that read the process environment.
func txtFuncMap() template.FuncMap {
	fm := sprig.TxtFuncMap()
	delete(fm, "env")
	delete(fm, "expandenv")
	return fm
}

func htmlFuncMap() htmltemplate.FuncMap {
	fm := sprig.HtmlFuncMap()
	delete(fm, "env")
	delete(fm, "expandenv")
	return fm
}

// executeText renders src as a Go text template over data.
func executeText(name, src string, data map[string]interface{}) ([]byte, error) {
	src, err := normalizePlaceholders(src, data)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(name).Funcs(txtFuncMap()).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, syntaxError(err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, syntaxError(err)
	}
	return buf.Bytes(), nil
}

// executeHTML renders src as an HTML template over data. Values, including the
// generated findings section, are escaped for their HTML context.
func executeHTML(name, src string, data map[string]interface{}) ([]byte, error) {
	src, err := normalizePlaceholders(src, data)
	if err != nil {
		return nil, err
	}
	tmpl, err := htmltemplate.New(name).Funcs(htmlFuncMap()).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, syntaxError(err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, syntaxError(err)
	}
	return buf.Bytes(), nil
}

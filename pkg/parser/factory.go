package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pentesthub/pentest-hub/pkg/types"
)

// ParserFactory selects a scanner parser by tool name.
type ParserFactory struct {
	parsers map[string]types.Parser
}

// NewParserFactory creates a factory serving the given parsers, keyed by their
// lower-cased tool name. Later parsers replace earlier ones with the same name.
func NewParserFactory(parsers ...types.Parser) *ParserFactory {
	f := &ParserFactory{parsers: make(map[string]types.Parser, len(parsers))}
	for _, p := range parsers {
		f.parsers[strings.ToLower(p.Tool())] = p
	}
	return f
}

// DefaultParserFactory returns a factory with every built-in parser registered.
func DefaultParserFactory() *ParserFactory {
	return NewParserFactory(NewBurpParser(), NewNessusParser())
}

// CreateParser returns the parser registered for tool. Matching is case-insensitive.
func (f *ParserFactory) CreateParser(tool string) (types.Parser, error) {
	p, ok := f.parsers[strings.ToLower(strings.TrimSpace(tool))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", types.ErrUnsupportedTool, tool, strings.Join(f.Tools(), ", "))
	}
	return p, nil
}

// Tools returns the registered tool names in sorted order.
func (f *ParserFactory) Tools() []string {
	tools := make([]string, 0, len(f.parsers))
	for name := range f.parsers {
		tools = append(tools, name)
	}
	sort.Strings(tools)
	return tools
}

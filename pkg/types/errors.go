package types

import "errors"

// Caller-input errors. The HTTP layer maps these to 400.
var (
	// ErrMalformedInput is returned when a scanner export cannot be parsed.
	ErrMalformedInput = errors.New("malformed scanner input")
	// ErrUnsupportedTool is returned when no parser is registered for a tool name.
	ErrUnsupportedTool = errors.New("unsupported tool")
	// ErrUnsupportedReportType is returned when a report is requested in a type the renderer cannot produce.
	ErrUnsupportedReportType = errors.New("unsupported report type")
	// ErrTemplateSyntax is returned when a report template fails to parse or references an undefined placeholder.
	ErrTemplateSyntax = errors.New("template syntax error")
	// ErrInvalidInput is returned when a request fails validation.
	ErrInvalidInput = errors.New("invalid input")
)

// Missing-entity errors. The HTTP layer maps these to 404.
var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrTemplateNotFound = errors.New("report template not found")
	ErrFindingNotFound  = errors.New("finding not found")
	ErrTagNotFound      = errors.New("tag not found")
)

// ErrTagCreateRace signals that a tag with the same name was created concurrently.
// It never leaves the importer: the tag is re-fetched instead.
var ErrTagCreateRace = errors.New("tag already exists")

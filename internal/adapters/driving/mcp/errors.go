// Package mcp provides an MCP (Model Context Protocol) server adapter for labelrag.
// It lets AI assistants ask cited questions about pesticide product labels.
package mcp

import "errors"

// ErrMissingLabelService is returned when the label service is not provided.
var ErrMissingLabelService = errors.New("mcp: label service is required")

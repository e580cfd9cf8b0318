package mcp

import (
	"github.com/custodia-labs/labelrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Label answers questions about product labels.
	Label driving.LabelService

	// Document exposes indexed label documents. Optional.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Label == nil {
		return ErrMissingLabelService
	}
	return nil
}

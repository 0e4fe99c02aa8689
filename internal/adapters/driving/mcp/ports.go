package mcp

import (
	"github.com/custodia-labs/salasync/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Registry reads rooms and patients.
	Registry driving.RegistryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Registry == nil {
		return ErrMissingRegistryService
	}
	return nil
}

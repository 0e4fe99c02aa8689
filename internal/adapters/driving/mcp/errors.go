// Package mcp provides an MCP (Model Context Protocol) server adapter for salasync.
// It gives AI assistants read-only access to the patient registry.
package mcp

import "errors"

// ErrMissingRegistryService is returned when the registry service is not provided.
var ErrMissingRegistryService = errors.New("mcp: registry service is required")

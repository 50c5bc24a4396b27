// Package mcp provides an MCP (Model Context Protocol) server adapter for prepkit.
// It lets AI assistants run the career-preparation queries against the local knowledge base.
package mcp

import "errors"

// ErrMissingCareerService is returned when the career service is not provided.
var ErrMissingCareerService = errors.New("mcp: career service is required")

package mcp

import (
	"github.com/custodia-labs/prepkit/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Career runs the query operations.
	Career driving.CareerService

	// Engine reports engine and index status.
	Engine driving.EngineService

	// Prompts exposes the prompt templates as resources.
	Prompts driving.PromptService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Career == nil {
		return ErrMissingCareerService
	}
	// Engine and Prompts are optional
	return nil
}

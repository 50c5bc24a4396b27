// Package tui provides an interactive terminal user interface for prepkit.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/prepkit/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Career answers questions and builds preparation artifacts.
	Career driving.CareerService

	// Engine reports readiness and index state. Optional.
	Engine driving.EngineService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(career driving.CareerService, engine driving.EngineService) *Ports {
	return &Ports{
		Career: career,
		Engine: engine,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Career == nil {
		return ErrMissingCareerService
	}
	return nil
}

package httpapi

import (
	"net/http"

	"github.com/custodia-labs/prepkit/internal/core/ports/driving"
)

// Ports aggregates the driving ports the HTTP server exposes.
type Ports struct {
	// Career serves the five query operations. Required.
	Career driving.CareerService

	// Resume decodes uploaded resumes. Required.
	Resume driving.ResumeDecoder

	// Engine backs /ready. Optional.
	Engine driving.EngineService

	// Ingest backs POST /ingest. Optional.
	Ingest driving.IngestService

	// Metrics serves /metrics. Optional.
	Metrics http.Handler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Career == nil {
		return ErrMissingCareerService
	}
	if p.Resume == nil {
		return ErrMissingResumeDecoder
	}
	return nil
}

package driving

import (
	"context"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

// CareerService exposes the five query operations of the RAG pipeline.
//
// Every operation is safe for concurrent use. Failures are returned as typed
// errors from the domain package; domain.PayloadFor turns them into the
// caller-visible payload.
type CareerService interface {
	// Chat answers a free-form question from the knowledge base.
	// The reply is always displayable, even when err is non-nil: it then
	// carries the fixed message for the failure.
	Chat(ctx context.Context, message string) (domain.ChatReply, error)

	// Roadmap builds a preparation roadmap for a company and role.
	Roadmap(ctx context.Context, company, role string) ([]domain.RoadmapItem, error)

	// AnalyzeSkills compares resume text against a role's requirements.
	AnalyzeSkills(ctx context.Context, company, role, resume string) (*domain.SkillsAnalysis, error)

	// AnalyzeATS scores resume text for applicant-tracking-system compatibility.
	AnalyzeATS(ctx context.Context, company, role, resume string) (*domain.AtsReport, error)

	// Experiences digests interview experiences for a company.
	// It returns an empty, non-nil slice when nothing can be produced.
	Experiences(ctx context.Context, company string) ([]domain.Experience, error)
}

// EngineService controls and reports the query engine lifecycle.
type EngineService interface {
	// Initialize builds the engine components.
	// It moves the engine to Ready on success and Failed otherwise.
	Initialize(ctx context.Context) error

	// State returns the current lifecycle state.
	State() domain.EngineState

	// Status returns a snapshot for health reporting.
	Status(ctx context.Context) domain.EngineStatus

	// Close releases the engine components.
	Close() error
}

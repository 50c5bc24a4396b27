package driven

import "time"

// Pipeline stage names used when recording metrics.
const (
	StageEmbed    = "embed"
	StageRetrieve = "retrieve"
	StageRerank   = "rerank"
	StageGenerate = "generate"
	StageParse    = "parse"
)

// MetricsRecorder receives pipeline instrumentation.
// All methods must be safe for concurrent use.
type MetricsRecorder interface {
	// ObserveStage records the duration and outcome of one pipeline stage.
	ObserveStage(operation, stage string, d time.Duration, err error)

	// ObserveOperation records a completed operation.
	// outcome is "ok" or a short error class such as "parse_error".
	ObserveOperation(operation, outcome string, d time.Duration)

	// RerankDegraded counts a reranker failure that fell back to retrieval order.
	RerankDegraded(operation string)

	// ObserveIngest records a finished ingestion run.
	ObserveIngest(documents, chunks int, d time.Duration, err error)

	// SetEngineState publishes the current engine state.
	SetEngineState(state string)
}

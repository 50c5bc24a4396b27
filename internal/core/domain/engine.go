package domain

import "time"

// EngineState is the lifecycle state of the query engine.
type EngineState int

// Engine states. Transitions are Uninitialized -> Initializing -> Ready|Failed.
const (
	EngineUninitialized EngineState = iota
	EngineInitializing
	EngineReady
	EngineFailed
)

// String returns the string representation.
func (s EngineState) String() string {
	switch s {
	case EngineUninitialized:
		return "uninitialized"
	case EngineInitializing:
		return "initializing"
	case EngineReady:
		return "ready"
	case EngineFailed:
		return "failed"
	default:
		return unknownDescription
	}
}

// Accepting reports whether operations may run in this state.
func (s EngineState) Accepting() bool {
	return s == EngineReady
}

// EngineStatus is a snapshot of the engine for health endpoints and the CLI.
type EngineStatus struct {
	State EngineState `json:"-"`

	// StateName mirrors State for serialisation.
	StateName string `json:"state"`

	// Error is the initialisation failure, if any.
	Error string `json:"error,omitempty"`

	// Index describes the loaded vector index.
	Index IndexInfo `json:"index"`

	// Models names the configured models.
	EmbeddingModel string `json:"embedding_model,omitempty"`
	RerankModel    string `json:"rerank_model,omitempty"`
	LLMModel       string `json:"llm_model,omitempty"`

	// ReadySince is when the engine entered Ready.
	ReadySince time.Time `json:"ready_since,omitempty"`
}

// IngestReport summarises an ingestion run.
type IngestReport struct {
	// Dir is the corpus directory that was read.
	Dir string `json:"dir"`

	// Documents is the number of documents loaded.
	Documents int `json:"documents"`

	// Chunks is the number of chunks written to the index.
	Chunks int `json:"chunks"`

	// Skipped lists files that could not be loaded.
	Skipped []string `json:"skipped,omitempty"`

	// Dimensions is the embedding size of the new index.
	Dimensions int `json:"dimensions"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"duration"`
}

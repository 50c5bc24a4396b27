package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or normaliser type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSystemUnavailable indicates the engine is not in the Ready state.
	ErrSystemUnavailable = errors.New("system unavailable")

	// ErrIndexUnavailable indicates no vector index has been built or loaded.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrNoResults indicates retrieval returned no candidates.
	ErrNoResults = errors.New("no results")

	// ErrRerankFailed indicates the cross-encoder could not score candidates.
	// It is always recovered locally by falling back to retrieval order.
	ErrRerankFailed = errors.New("rerank failed")

	// ErrCorpusNotFound indicates the corpus directory does not exist.
	ErrCorpusNotFound = errors.New("corpus directory not found")

	// ErrEmptyCorpus indicates the corpus directory holds no loadable documents.
	ErrEmptyCorpus = errors.New("corpus is empty")

	// ErrInvalidResume indicates resume text failed the plausibility check.
	ErrInvalidResume = errors.New("resume appears invalid or empty")

	// ErrDimensionMismatch indicates a vector does not match the index dimensions.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRerankerUnavailable indicates the reranker is not configured.
	ErrRerankerUnavailable = errors.New("reranker unavailable")

	// ErrVectorIndexUnavailable indicates the vector index backend could not be opened.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrRateLimited indicates an upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrNoText indicates an uploaded file held no extractable text.
	ErrNoText = errors.New("no extractable text")
)

// IngestionError reports a failed ingestion run.
type IngestionError struct {
	Dir string
	Err error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Dir, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// RetrievalError reports a failed vector index query.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// GenerationError reports a failed LLM call.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ParseError reports LLM output that is not valid JSON.
// Raw always holds the unmodified model output.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse LLM response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports JSON that does not match the expected artifact shape.
type ValidationError struct {
	// Field is a JSON path such as "[2].verdict" or "ats_score".
	// Empty when the top-level value has the wrong kind.
	Field  string
	Reason string
	Raw    string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validate LLM response: " + e.Reason
	}
	return fmt.Sprintf("validate LLM response: %s: %s", e.Field, e.Reason)
}

// DecodeError reports an uploaded file that could not be converted to text.
type DecodeError struct {
	// Format is the file format that failed, e.g. "PDF".
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("Failed to parse %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

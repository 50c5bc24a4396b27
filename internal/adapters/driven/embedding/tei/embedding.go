// Package tei provides an embedding service adapter for HuggingFace
// text-embeddings-inference servers running sentence-transformers models.
package tei

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/prepkit/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultModel   = "sentence-transformers/all-mpnet-base-v2"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the TEI embedding service.
type Config struct {
	// BaseURL is the TEI server URL (default: http://localhost:8080).
	BaseURL string

	// Model names the model the server was started with. TEI serves a
	// single model, so this is informational and selects the dimensions.
	Model string

	// APIKey is sent as a bearer token when set (for hosted endpoints).
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// Dimensions overrides the known dimension for the model.
	Dimensions int
}

// EmbeddingService generates embeddings with the TEI /embed endpoint.
type EmbeddingService struct {
	api        *httpjson.Client
	model      string
	dimensions int
}

type embedRequest struct {
	Inputs   []string `json:"inputs"`
	Truncate bool     `json:"truncate"`
}

// NewEmbeddingService creates a new TEI embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = domain.EmbeddingDimensions()[cfg.Model]
	}

	return &EmbeddingService{
		api:        httpjson.New("tei", cfg.BaseURL, cfg.Timeout, httpjson.WithBearer(cfg.APIKey)),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
// Inputs longer than the model's window are truncated by the server.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var embeddings [][]float32
	if err := s.api.Post(ctx, "/embed", embedRequest{Inputs: texts, Truncate: true}, &embeddings); err != nil {
		return nil, err
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("tei: got %d embeddings for %d inputs", len(embeddings), len(texts))
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size, or 0 for unknown models.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the server is up using the /health endpoint.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Check(ctx, "/health")
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

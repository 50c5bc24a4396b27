// Package tei provides a cross-encoder reranker adapter for HuggingFace
// text-embeddings-inference servers started with a reranking model.
package tei

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/prepkit/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8081"
	DefaultModel   = "cross-encoder/ms-marco-MiniLM-L-6-v2"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the TEI reranker.
type Config struct {
	// BaseURL is the TEI server URL (default: http://localhost:8081).
	BaseURL string

	// Model names the cross-encoder the server was started with.
	Model string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Reranker scores (query, passage) pairs with the TEI /rerank endpoint.
type Reranker struct {
	api   *httpjson.Client
	model string
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Texts     []string `json:"texts"`
	RawScores bool     `json:"raw_scores"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// NewReranker creates a new TEI reranker.
func NewReranker(cfg Config) *Reranker {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Reranker{
		api:   httpjson.New("tei", cfg.BaseURL, cfg.Timeout, httpjson.WithBearer(cfg.APIKey)),
		model: cfg.Model,
	}
}

// Score returns one relevance score per passage, in passage order.
// TEI answers sorted by score, so results are mapped back by index.
func (r *Reranker) Score(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return []float64{}, nil
	}

	var results []rerankResult
	req := rerankRequest{Query: query, Texts: passages}
	if err := r.api.Post(ctx, "/rerank", req, &results); err != nil {
		return nil, fmt.Errorf("tei rerank: %w", err)
	}

	scores := make([]float64, len(passages))
	seen := make([]bool, len(passages))
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(passages) {
			return nil, fmt.Errorf("tei rerank: result index %d out of range", res.Index)
		}
		scores[res.Index] = res.Score
		seen[res.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("tei rerank: no score returned for passage %d", i)
		}
	}
	return scores, nil
}

// ModelName returns the cross-encoder model name.
func (r *Reranker) ModelName() string {
	return r.model
}

// Ping checks the server /health endpoint.
func (r *Reranker) Ping(ctx context.Context) error {
	if err := r.api.Check(ctx, "/health"); err != nil {
		return fmt.Errorf("tei rerank: %w", err)
	}
	return nil
}

// Close releases resources.
func (r *Reranker) Close() error {
	return nil
}

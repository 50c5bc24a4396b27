// Package cohere provides a reranker adapter for Cohere-compatible /v1/rerank APIs.
// Jina and Voyage expose the same request shape.
package cohere

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/prepkit/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.cohere.com"
	DefaultModel   = "rerank-english-v3.0"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the Cohere reranker.
type Config struct {
	// APIKey is the API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.cohere.com).
	BaseURL string

	// Model is the rerank model (default: rerank-english-v3.0).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Reranker scores passages with a hosted rerank model.
type Reranker struct {
	api   *httpjson.Client
	model string
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// NewReranker creates a new Cohere reranker.
func NewReranker(cfg Config) (*Reranker, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("cohere: API key is required")
	}
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
		api:   httpjson.New("cohere", cfg.BaseURL, cfg.Timeout, httpjson.WithBearer(cfg.APIKey)),
		model: cfg.Model,
	}, nil
}

// Score returns one relevance score per passage, in passage order.
func (r *Reranker) Score(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return []float64{}, nil
	}

	req := rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: passages,
		TopN:      len(passages),
	}
	var rr rerankResponse
	if err := r.api.Post(ctx, "/v1/rerank", req, &rr); err != nil {
		return nil, err
	}

	scores := make([]float64, len(passages))
	seen := make([]bool, len(passages))
	for _, res := range rr.Results {
		if res.Index < 0 || res.Index >= len(passages) {
			return nil, fmt.Errorf("cohere: result index %d out of range", res.Index)
		}
		scores[res.Index] = res.RelevanceScore
		seen[res.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("cohere: no score returned for passage %d", i)
		}
	}
	return scores, nil
}

// ModelName returns the rerank model name.
func (r *Reranker) ModelName() string {
	return r.model
}

// Ping validates the API key with a single-document rerank.
func (r *Reranker) Ping(ctx context.Context) error {
	if _, err := r.Score(ctx, "ping", []string{"ping"}); err != nil {
		return fmt.Errorf("cohere: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (r *Reranker) Close() error {
	return nil
}

package driven

import "context"

// Reranker is a cross-encoder relevance model.
// It scores (query, passage) pairs jointly; higher means more relevant.
//
// Implementations may include:
//   - Text Embeddings Inference /rerank (ms-marco cross-encoders)
//   - Cohere-compatible /v1/rerank APIs (Cohere, Jina, Voyage)
type Reranker interface {
	// Score returns one score per passage, in passage order.
	Score(ctx context.Context, query string, passages []string) ([]float64, error)

	// ModelName returns the name of the cross-encoder model.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

package driven

import "context"

// Components bundles the services the query engine needs.
type Components struct {
	Embedding EmbeddingService
	Index     VectorIndex
	Reranker  Reranker
	LLM       LLMService

	// Warnings lists non-fatal problems found while building components.
	Warnings []string
}

// Close releases every non-nil component.
// The first error is returned; all components are closed regardless.
func (c *Components) Close() error {
	var first error
	closers := []interface{ Close() error }{}
	if c.Embedding != nil {
		closers = append(closers, c.Embedding)
	}
	if c.Index != nil {
		closers = append(closers, c.Index)
	}
	if c.Reranker != nil {
		closers = append(closers, c.Reranker)
	}
	if c.LLM != nil {
		closers = append(closers, c.LLM)
	}
	for _, cl := range closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ComponentLoader constructs and validates the engine's components.
// An error means at least one required component could not be built.
type ComponentLoader interface {
	Load(ctx context.Context) (*Components, error)
}

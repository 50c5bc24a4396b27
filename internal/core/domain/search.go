package domain

import "strings"

// ContextSeparator joins chunk texts when they are assembled into a prompt.
const ContextSeparator = "\n\n"

// RetrievalResult is a chunk returned by vector search.
// Results are ordered by descending similarity.
type RetrievalResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Similarity is the cosine similarity to the query vector.
	Similarity float64
}

// RerankedResult is a chunk after cross-encoder scoring.
// Results are ordered by descending relevance.
type RerankedResult struct {
	// Chunk is the scored chunk.
	Chunk Chunk

	// Relevance is the reranker score (higher = more relevant).
	// When reranking degraded, it repeats the retrieval similarity.
	Relevance float64

	// Rank is the candidate's 0-based position in the retrieval order.
	Rank int
}

// JoinRetrieved concatenates retrieval results in order for use as prompt context.
func JoinRetrieved(results []RetrievalResult) string {
	parts := make([]string, len(results))
	for i := range results {
		parts[i] = results[i].Chunk.Content
	}
	return strings.Join(parts, ContextSeparator)
}

// JoinReranked concatenates reranked results in order for use as prompt context.
func JoinReranked(results []RerankedResult) string {
	parts := make([]string, len(results))
	for i := range results {
		parts[i] = results[i].Chunk.Content
	}
	return strings.Join(parts, ContextSeparator)
}

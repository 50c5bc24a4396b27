package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

// Rerank orders candidates by cross-encoder relevance and keeps the top n.
// Equal scores keep retrieval order.
//
// The result always holds min(n, len(candidates)) entries. When scoring fails
// the error wraps domain.ErrRerankFailed and the result is the first n
// candidates in retrieval order, with Relevance set to their similarity.
func Rerank(
	ctx context.Context, scorer driven.Reranker, query string, candidates []domain.RetrievalResult, n int,
) ([]domain.RerankedResult, error) {
	if n > len(candidates) {
		n = len(candidates)
	}
	if n <= 0 {
		return []domain.RerankedResult{}, nil
	}

	ranked := make([]domain.RerankedResult, len(candidates))
	for i, c := range candidates {
		ranked[i] = domain.RerankedResult{Chunk: c.Chunk, Relevance: c.Similarity, Rank: i}
	}

	if scorer == nil {
		return ranked[:n], fmt.Errorf("%w: no reranker configured", domain.ErrRerankFailed)
	}

	passages := make([]string, len(candidates))
	for i, c := range candidates {
		passages[i] = c.Chunk.Content
	}

	scores, err := scorer.Score(ctx, query, passages)
	if err != nil {
		return ranked[:n], fmt.Errorf("%w: %w", domain.ErrRerankFailed, err)
	}
	if len(scores) != len(candidates) {
		return ranked[:n], fmt.Errorf("%w: got %d scores for %d passages",
			domain.ErrRerankFailed, len(scores), len(candidates))
	}

	for i := range ranked {
		ranked[i].Relevance = scores[i]
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Relevance > ranked[j].Relevance
	})
	return ranked[:n], nil
}

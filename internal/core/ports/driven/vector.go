package driven

import (
	"context"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

// VectorIndex stores index entries and answers nearest-neighbour queries.
//
// Search returns at most k results strictly ordered by descending cosine
// similarity, ties broken by insertion order. Searching an index that was
// never built, or was cleared and not repopulated, returns
// domain.ErrIndexUnavailable.
type VectorIndex interface {
	// Upsert inserts entries, replacing any with the same chunk ID.
	// Entries are ordered after everything already stored.
	Upsert(ctx context.Context, entries []domain.IndexEntry) error

	// Search finds the k nearest entries to the query vector.
	Search(ctx context.Context, query []float32, k int) ([]domain.RetrievalResult, error)

	// Clear removes every entry and marks the index as not built.
	Clear(ctx context.Context) error

	// Info describes the current contents.
	Info(ctx context.Context) (domain.IndexInfo, error)

	// Close releases resources.
	Close() error
}

// AtomicRebuilder is implemented by indexes that can replace their whole
// contents in one step, so readers see either the old or the new entries.
type AtomicRebuilder interface {
	// Rebuild replaces all entries. model is recorded in IndexInfo.
	Rebuild(ctx context.Context, entries []domain.IndexEntry, model string) error
}

package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interfaces.
var (
	_ driven.VectorIndex     = (*VectorIndex)(nil)
	_ driven.AtomicRebuilder = (*VectorIndex)(nil)
)

// VectorIndex is an in-memory brute-force cosine index.
// Entries keep insertion order, which breaks similarity ties.
type VectorIndex struct {
	mu      sync.RWMutex
	entries []storedEntry
	info    domain.IndexInfo
}

type storedEntry struct {
	entry domain.IndexEntry
	norm  float64
}

// NewVectorIndex creates an empty, unbuilt index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// Upsert appends entries, replacing existing entries with the same chunk ID.
func (x *VectorIndex) Upsert(_ context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	dims := x.info.Dimensions
	if dims == 0 {
		dims = len(entries[0].Vector)
	}
	prepared, err := prepare(entries, dims)
	if err != nil {
		return err
	}

	replaced := make(map[string]bool, len(entries))
	for _, e := range entries {
		replaced[e.Chunk.ID] = true
	}
	kept := x.entries[:0:0]
	for _, s := range x.entries {
		if !replaced[s.entry.Chunk.ID] {
			kept = append(kept, s)
		}
	}

	x.entries = append(kept, prepared...)
	x.info.Built = true
	x.info.Entries = len(x.entries)
	x.info.Dimensions = dims
	x.info.BuiltAt = time.Now().UTC()
	return nil
}

// Rebuild replaces every entry at once. Concurrent searches see either the
// previous contents or the new ones.
func (x *VectorIndex) Rebuild(_ context.Context, entries []domain.IndexEntry, model string) error {
	var dims int
	if len(entries) > 0 {
		dims = len(entries[0].Vector)
	}
	prepared, err := prepare(entries, dims)
	if err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = prepared
	x.info = domain.IndexInfo{
		Built:      true,
		Entries:    len(prepared),
		Dimensions: dims,
		Model:      model,
		BuiltAt:    time.Now().UTC(),
	}
	return nil
}

// Restore loads persisted entries without validation side effects.
// It is used by durable indexes that keep a memory snapshot.
func (x *VectorIndex) Restore(entries []domain.IndexEntry, info domain.IndexInfo) error {
	prepared, err := prepare(entries, info.Dimensions)
	if err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = prepared
	info.Entries = len(prepared)
	x.info = info
	return nil
}

// Search returns the k entries most similar to query.
func (x *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievalResult, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if !x.info.Built {
		return nil, domain.ErrIndexUnavailable
	}
	if k <= 0 || len(x.entries) == 0 {
		return []domain.RetrievalResult{}, nil
	}
	if len(query) != x.info.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), x.info.Dimensions)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	qnorm := Norm(query)
	results := make([]domain.RetrievalResult, len(x.entries))
	for i, s := range x.entries {
		results[i] = domain.RetrievalResult{
			Chunk:      s.entry.Chunk,
			Similarity: cosine(query, qnorm, s.entry.Vector, s.norm),
		}
	}

	SortResults(results)
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Clear removes every entry and marks the index as unbuilt.
func (x *VectorIndex) Clear(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = nil
	x.info = domain.IndexInfo{}
	return nil
}

// Info describes the index contents.
func (x *VectorIndex) Info(_ context.Context) (domain.IndexInfo, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.info, nil
}

// Close is a no-op.
func (x *VectorIndex) Close() error {
	return nil
}

// SortResults orders results by descending similarity. The sort is stable,
// so equal scores keep their existing (insertion) order.
func SortResults(results []domain.RetrievalResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
}

// Norm returns the Euclidean length of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, anorm float64, b []float32, bnorm float64) float64 {
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (anorm * bnorm)
}

func prepare(entries []domain.IndexEntry, dims int) ([]storedEntry, error) {
	out := make([]storedEntry, len(entries))
	for i, e := range entries {
		if len(e.Vector) == 0 || len(e.Vector) != dims {
			return nil, fmt.Errorf("%w: entry %q has %d dimensions, want %d",
				domain.ErrDimensionMismatch, e.Chunk.ID, len(e.Vector), dims)
		}
		out[i] = storedEntry{entry: e, norm: Norm(e.Vector)}
	}
	return out, nil
}

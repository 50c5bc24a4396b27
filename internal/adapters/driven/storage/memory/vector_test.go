package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

func entry(id string, v ...float32) domain.IndexEntry {
	return domain.IndexEntry{
		Chunk:  domain.Chunk{ID: id, Content: "text " + id, Source: id + ".txt"},
		Vector: v,
	}
}

func TestVectorIndex_UnbuiltIsUnavailable(t *testing.T) {
	x := NewVectorIndex()
	_, err := x.Search(context.Background(), []float32{1, 0}, 3)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)

	info, err := x.Info(context.Background())
	require.NoError(t, err)
	assert.False(t, info.Built)
}

func TestVectorIndex_SearchOrdering(t *testing.T) {
	ctx := context.Background()
	x := NewVectorIndex()
	require.NoError(t, x.Upsert(ctx, []domain.IndexEntry{
		entry("far", 0, 1),
		entry("tie-a", 1, 1),
		entry("near", 1, 0),
		entry("tie-b", 1, 1),
	}))

	results, err := x.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 4)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Chunk.ID
	}
	assert.Equal(t, []string{"near", "tie-a", "tie-b", "far"}, ids)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity)
	}
}

func TestVectorIndex_SearchLimit(t *testing.T) {
	ctx := context.Background()
	x := NewVectorIndex()
	var entries []domain.IndexEntry
	for i := 0; i < 20; i++ {
		entries = append(entries, entry(fmt.Sprint(i), float32(i), 1))
	}
	require.NoError(t, x.Upsert(ctx, entries))

	results, err := x.Search(ctx, []float32{1, 1}, 5)
	require.NoError(t, err)
	assert.Len(t, results, 5)

	results, err = x.Search(ctx, []float32{1, 1}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVectorIndex_ClearThenUpsert(t *testing.T) {
	ctx := context.Background()
	x := NewVectorIndex()
	require.NoError(t, x.Upsert(ctx, []domain.IndexEntry{entry("old", 1, 0)}))
	require.NoError(t, x.Clear(ctx))

	_, err := x.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)

	require.NoError(t, x.Upsert(ctx, []domain.IndexEntry{entry("new", 1, 0)}))
	results, err := x.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].Chunk.ID)
}

func TestVectorIndex_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	x := NewVectorIndex()
	require.NoError(t, x.Upsert(ctx, []domain.IndexEntry{entry("a", 1, 0), entry("b", 0, 1)}))
	require.NoError(t, x.Upsert(ctx, []domain.IndexEntry{entry("a", 0, 1)}))

	info, _ := x.Info(ctx)
	assert.Equal(t, 2, info.Entries)

	results, err := x.Search(ctx, []float32{0, 1}, 2)
	require.NoError(t, err)
	// Equal scores: b was inserted before the replacement of a.
	assert.Equal(t, "b", results[0].Chunk.ID)
	assert.Equal(t, "a", results[1].Chunk.ID)
}

func TestVectorIndex_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	x := NewVectorIndex()
	require.NoError(t, x.Upsert(ctx, []domain.IndexEntry{entry("a", 1, 0)}))

	err := x.Upsert(ctx, []domain.IndexEntry{entry("b", 1, 0, 0)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = x.Search(ctx, []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestVectorIndex_Rebuild(t *testing.T) {
	ctx := context.Background()
	x := NewVectorIndex()
	require.NoError(t, x.Upsert(ctx, []domain.IndexEntry{entry("old", 1, 0)}))

	require.NoError(t, x.Rebuild(ctx, []domain.IndexEntry{entry("n1", 1, 0, 0), entry("n2", 0, 1, 0)}, "mpnet"))

	info, err := x.Info(ctx)
	require.NoError(t, err)
	assert.True(t, info.Built)
	assert.Equal(t, 2, info.Entries)
	assert.Equal(t, 3, info.Dimensions)
	assert.Equal(t, "mpnet", info.Model)

	results, err := x.Search(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "old", r.Chunk.ID)
	}
}

func TestVectorIndex_RebuildEmpty(t *testing.T) {
	ctx := context.Background()
	x := NewVectorIndex()
	require.NoError(t, x.Rebuild(ctx, nil, "mpnet"))

	results, err := x.Search(ctx, []float32{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVectorIndex_ZeroVector(t *testing.T) {
	ctx := context.Background()
	x := NewVectorIndex()
	require.NoError(t, x.Upsert(ctx, []domain.IndexEntry{entry("zero", 0, 0)}))

	results, err := x.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, results[0].Similarity)
}

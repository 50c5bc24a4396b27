package qdrant

import (
	"context"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"testing"

	qdrantclient "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

// fakeServer is an in-process stand-in for a Qdrant node: named collections
// plus aliases, resolved the way the server resolves them.
type fakeServer struct {
	collections map[string]*fakeCollection
	aliases     map[string]string

	// failUpsert makes the n-th Upsert call (1-based) fail; 0 never fails.
	failUpsert int
	upserts    int
}

type fakeCollection struct {
	dims   uint64
	points map[string]*qdrantclient.PointStruct
}

func newFakeServer() *fakeServer {
	return &fakeServer{collections: map[string]*fakeCollection{}, aliases: map[string]string{}}
}

func (s *fakeServer) lookup(name string) *fakeCollection {
	if target, ok := s.aliases[name]; ok {
		name = target
	}
	return s.collections[name]
}

// live returns the collection the index name currently serves.
func (s *fakeServer) live() *fakeCollection {
	return s.lookup("prepkit")
}

type fakeCollections struct {
	qdrantclient.CollectionsClient
	srv *fakeServer
}

func (f *fakeCollections) List(
	_ context.Context, _ *qdrantclient.ListCollectionsRequest, _ ...grpc.CallOption,
) (*qdrantclient.ListCollectionsResponse, error) {
	resp := &qdrantclient.ListCollectionsResponse{}
	for name := range f.srv.collections {
		resp.Collections = append(resp.Collections, &qdrantclient.CollectionDescription{Name: name})
	}
	return resp, nil
}

func (f *fakeCollections) ListAliases(
	_ context.Context, _ *qdrantclient.ListAliasesRequest, _ ...grpc.CallOption,
) (*qdrantclient.ListAliasesResponse, error) {
	resp := &qdrantclient.ListAliasesResponse{}
	for alias, name := range f.srv.aliases {
		resp.Aliases = append(resp.Aliases, &qdrantclient.AliasDescription{AliasName: alias, CollectionName: name})
	}
	return resp, nil
}

func (f *fakeCollections) UpdateAliases(
	_ context.Context, in *qdrantclient.ChangeAliases, _ ...grpc.CallOption,
) (*qdrantclient.CollectionOperationResponse, error) {
	next := map[string]string{}
	for k, v := range f.srv.aliases {
		next[k] = v
	}
	for _, op := range in.GetActions() {
		switch {
		case op.GetDeleteAlias() != nil:
			delete(next, op.GetDeleteAlias().GetAliasName())
		case op.GetCreateAlias() != nil:
			c := op.GetCreateAlias()
			if _, ok := f.srv.collections[c.GetAliasName()]; ok {
				return nil, status.Error(codes.AlreadyExists, "collection with the alias name exists")
			}
			if _, ok := f.srv.collections[c.GetCollectionName()]; !ok {
				return nil, status.Error(codes.NotFound, "collection not found")
			}
			next[c.GetAliasName()] = c.GetCollectionName()
		}
	}
	f.srv.aliases = next
	return &qdrantclient.CollectionOperationResponse{Result: true}, nil
}

func (f *fakeCollections) Create(
	_ context.Context, in *qdrantclient.CreateCollection, _ ...grpc.CallOption,
) (*qdrantclient.CollectionOperationResponse, error) {
	name := in.GetCollectionName()
	if f.srv.lookup(name) != nil {
		return nil, status.Error(codes.AlreadyExists, "collection exists")
	}
	f.srv.collections[name] = &fakeCollection{
		dims:   in.GetVectorsConfig().GetParams().GetSize(),
		points: map[string]*qdrantclient.PointStruct{},
	}
	return &qdrantclient.CollectionOperationResponse{Result: true}, nil
}

func (f *fakeCollections) Delete(
	_ context.Context, in *qdrantclient.DeleteCollection, _ ...grpc.CallOption,
) (*qdrantclient.CollectionOperationResponse, error) {
	name := in.GetCollectionName()
	delete(f.srv.collections, name)
	for alias, target := range f.srv.aliases {
		if target == name {
			delete(f.srv.aliases, alias)
		}
	}
	return &qdrantclient.CollectionOperationResponse{Result: true}, nil
}

func (f *fakeCollections) Get(
	_ context.Context, in *qdrantclient.GetCollectionInfoRequest, _ ...grpc.CallOption,
) (*qdrantclient.GetCollectionInfoResponse, error) {
	c := f.srv.lookup(in.GetCollectionName())
	if c == nil {
		return nil, status.Error(codes.NotFound, "collection not found")
	}
	count := uint64(len(c.points))
	return &qdrantclient.GetCollectionInfoResponse{
		Result: &qdrantclient.CollectionInfo{
			PointsCount: &count,
			Config: &qdrantclient.CollectionConfig{
				Params: &qdrantclient.CollectionParams{
					VectorsConfig: &qdrantclient.VectorsConfig{
						Config: &qdrantclient.VectorsConfig_Params{
							Params: &qdrantclient.VectorParams{Size: c.dims},
						},
					},
				},
			},
		},
	}, nil
}

type fakePoints struct {
	qdrantclient.PointsClient
	srv *fakeServer
}

func (f *fakePoints) Upsert(
	_ context.Context, in *qdrantclient.UpsertPoints, _ ...grpc.CallOption,
) (*qdrantclient.PointsOperationResponse, error) {
	f.srv.upserts++
	if f.srv.upserts == f.srv.failUpsert {
		return nil, status.Error(codes.Unavailable, "connection reset")
	}
	c := f.srv.lookup(in.GetCollectionName())
	if c == nil {
		return nil, status.Error(codes.NotFound, "collection not found")
	}
	for _, p := range in.GetPoints() {
		c.points[p.GetId().GetUuid()] = p
	}
	return &qdrantclient.PointsOperationResponse{}, nil
}

func (f *fakePoints) Count(
	_ context.Context, in *qdrantclient.CountPoints, _ ...grpc.CallOption,
) (*qdrantclient.CountResponse, error) {
	c := f.srv.lookup(in.GetCollectionName())
	if c == nil {
		return nil, status.Error(codes.NotFound, "collection not found")
	}
	return &qdrantclient.CountResponse{
		Result: &qdrantclient.CountResult{Count: uint64(len(c.points))},
	}, nil
}

// Search scores every point and returns ties in reverse insertion order,
// so the adapter's own tie-breaking is exercised.
func (f *fakePoints) Search(
	_ context.Context, in *qdrantclient.SearchPoints, _ ...grpc.CallOption,
) (*qdrantclient.SearchResponse, error) {
	c := f.srv.lookup(in.GetCollectionName())
	if c == nil {
		return nil, status.Error(codes.NotFound, "collection not found")
	}
	var scored []*qdrantclient.ScoredPoint
	for _, p := range c.points {
		scored = append(scored, &qdrantclient.ScoredPoint{
			Id:      p.GetId(),
			Payload: p.GetPayload(),
			Score:   cosine(in.GetVector(), p.GetVectors().GetVector().GetData()),
		})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Payload[payloadSeq].GetIntegerValue() > scored[j].Payload[payloadSeq].GetIntegerValue()
	})
	if uint64(len(scored)) > in.GetLimit() {
		scored = scored[:in.GetLimit()]
	}
	return &qdrantclient.SearchResponse{Result: scored}, nil
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func newFakeIndex(t *testing.T) (*VectorIndex, *fakeServer) {
	t.Helper()
	srv := newFakeServer()
	x := newWithClients(&fakeCollections{srv: srv}, &fakePoints{srv: srv}, "prepkit")
	require.NoError(t, x.init(context.Background()))
	return x, srv
}

func entry(id, content string, vec ...float32) domain.IndexEntry {
	return domain.IndexEntry{
		Chunk: domain.Chunk{
			ID: id, DocumentID: "doc", Source: "acme.txt", Content: content,
			Position: 1, Start: 10, End: 10 + len(content),
		},
		Vector: vec,
	}
}

func TestSearch_MissingCollection(t *testing.T) {
	x, _ := newFakeIndex(t)

	_, err := x.Search(context.Background(), []float32{1, 0}, 3)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)

	info, err := x.Info(context.Background())
	require.NoError(t, err)
	assert.False(t, info.Built)
}

func TestRebuild_SearchRoundTrip(t *testing.T) {
	ctx := context.Background()
	x, _ := newFakeIndex(t)

	require.NoError(t, x.Rebuild(ctx, []domain.IndexEntry{
		entry("a", "aptitude", 1, 0),
		entry("b", "coding", 1, 0),
		entry("c", "hr", 0, 1),
	}, "mpnet"))

	results, err := x.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Chunk.ID, "ties keep insertion order")
	assert.Equal(t, "b", results[1].Chunk.ID)
	assert.Equal(t, "aptitude", results[0].Chunk.Content)
	assert.Equal(t, "acme.txt", results[0].Chunk.Source)
	assert.Equal(t, 10, results[0].Chunk.Start)

	info, err := x.Info(ctx)
	require.NoError(t, err)
	assert.True(t, info.Built)
	assert.Equal(t, 3, info.Entries)
	assert.Equal(t, 2, info.Dimensions)
	assert.Equal(t, "mpnet", info.Model)
}

func TestRebuild_DropsStaleEntries(t *testing.T) {
	ctx := context.Background()
	x, srv := newFakeIndex(t)

	require.NoError(t, x.Rebuild(ctx, []domain.IndexEntry{entry("old", "x", 1, 0, 0)}, "m"))
	require.NoError(t, x.Rebuild(ctx, []domain.IndexEntry{entry("new", "y", 1, 0)}, "m"))

	assert.Len(t, srv.live().points, 1)
	assert.Equal(t, uint64(2), srv.live().dims)
	assert.Len(t, srv.collections, 1, "previous collection is dropped after the switch")
}

func TestRebuild_Empty(t *testing.T) {
	ctx := context.Background()
	x, _ := newFakeIndex(t)

	require.NoError(t, x.Rebuild(ctx, nil, "m"))
	results, err := x.Search(ctx, []float32{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	info, err := x.Info(ctx)
	require.NoError(t, err)
	assert.True(t, info.Built)
}

func TestUpsert_ReplacesChunk(t *testing.T) {
	ctx := context.Background()
	x, srv := newFakeIndex(t)

	require.NoError(t, x.Upsert(ctx, []domain.IndexEntry{entry("a", "v1", 1, 1), entry("b", "v1", 1, 1)}))
	require.NoError(t, x.Upsert(ctx, []domain.IndexEntry{entry("a", "v2", 1, 1)}))
	assert.Len(t, srv.live().points, 2)

	results, err := x.Search(ctx, []float32{1, 1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].Chunk.ID)
	assert.Equal(t, "v2", results[1].Chunk.Content)
}

func TestUpsert_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	x, _ := newFakeIndex(t)

	require.NoError(t, x.Upsert(ctx, []domain.IndexEntry{entry("a", "x", 1, 0)}))
	err := x.Upsert(ctx, []domain.IndexEntry{entry("b", "y", 1, 0, 0)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	x, _ := newFakeIndex(t)

	require.NoError(t, x.Rebuild(ctx, []domain.IndexEntry{entry("a", "x", 1, 0)}, "m"))
	require.NoError(t, x.Clear(ctx))

	_, err := x.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func manyEntries(n int, vec ...float32) []domain.IndexEntry {
	entries := make([]domain.IndexEntry, n)
	for i := range entries {
		id := "c" + strconv.Itoa(i)
		entries[i] = entry(id, id, vec...)
	}
	return entries
}

func TestRebuild_FailedBatchKeepsPreviousIndex(t *testing.T) {
	ctx := context.Background()
	x, srv := newFakeIndex(t)
	require.NoError(t, x.Rebuild(ctx, []domain.IndexEntry{entry("old", "previous", 1, 0)}, "old-model"))

	srv.upserts = 0
	srv.failUpsert = 2
	err := x.Rebuild(ctx, manyEntries(600, 1, 0), "new-model")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Len(t, srv.collections, 1, "staging collection is deleted")

	info, err := x.Info(ctx)
	require.NoError(t, err)
	assert.True(t, info.Built)
	assert.Equal(t, 1, info.Entries)
	assert.Equal(t, "old-model", info.Model)

	results, err := x.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "previous", results[0].Chunk.Content)
}

func TestRebuild_FailedFirstBuildIsNotBuilt(t *testing.T) {
	ctx := context.Background()
	x, srv := newFakeIndex(t)
	srv.failUpsert = 2

	err := x.Rebuild(ctx, manyEntries(600, 1, 0), "m")

	require.Error(t, err)
	assert.Empty(t, srv.collections)
	assert.Empty(t, srv.aliases)

	info, err := x.Info(ctx)
	require.NoError(t, err)
	assert.False(t, info.Built)

	_, err = x.Search(ctx, []float32{1, 0}, 5)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestRebuild_ServesThroughAlias(t *testing.T) {
	ctx := context.Background()
	x, srv := newFakeIndex(t)

	require.NoError(t, x.Rebuild(ctx, manyEntries(600, 1, 0), "m"))

	physical, ok := srv.aliases["prepkit"]
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(physical, "prepkit_"))
	assert.Len(t, srv.collections[physical].points, 600)

	info, err := x.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 600, info.Entries)
}

func TestRebuild_ReplacesPlainCollection(t *testing.T) {
	ctx := context.Background()
	srv := newFakeServer()
	srv.collections["prepkit"] = &fakeCollection{dims: 2, points: map[string]*qdrantclient.PointStruct{
		"p": toPoint(entry("legacy", "legacy", 1, 0), 0),
	}}
	x := newWithClients(&fakeCollections{srv: srv}, &fakePoints{srv: srv}, "prepkit")
	require.NoError(t, x.init(ctx))
	assert.Equal(t, uint64(1), x.next)

	require.NoError(t, x.Rebuild(ctx, []domain.IndexEntry{entry("fresh", "fresh", 1, 0)}, "m"))

	_, plain := srv.collections["prepkit"]
	assert.False(t, plain)
	results, err := x.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "fresh", results[0].Chunk.Content)
}

func TestPointID_Stable(t *testing.T) {
	assert.Equal(t, pointID("chunk-1"), pointID("chunk-1"))
	assert.NotEqual(t, pointID("chunk-1"), pointID("chunk-2"))
}

func TestInit_SeedsSequence(t *testing.T) {
	srv := newFakeServer()
	x := newWithClients(&fakeCollections{srv: srv}, &fakePoints{srv: srv}, "prepkit")
	require.NoError(t, x.Rebuild(context.Background(), []domain.IndexEntry{
		entry("a", "x", 1), entry("b", "y", 1),
	}, "m"))

	reopened := newWithClients(&fakeCollections{srv: srv}, &fakePoints{srv: srv}, "prepkit")
	require.NoError(t, reopened.init(context.Background()))
	assert.Equal(t, uint64(2), reopened.next)
}

// TestOpen_LiveServer runs against a real Qdrant when PREPKIT_QDRANT_ADDR
// (host:port of the gRPC endpoint) is set.
func TestOpen_LiveServer(t *testing.T) {
	addr := os.Getenv("PREPKIT_QDRANT_ADDR")
	if addr == "" {
		t.Skip("PREPKIT_QDRANT_ADDR not set")
	}
	host, portStr, ok := strings.Cut(addr, ":")
	require.True(t, ok)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	ctx := context.Background()
	x, err := Open(ctx, Config{Host: host, Port: port, Collection: "prepkit_test"})
	require.NoError(t, err)
	defer x.Close()

	require.NoError(t, x.Rebuild(ctx, []domain.IndexEntry{entry("a", "x", 1, 0), entry("b", "y", 0, 1)}, "m"))
	results, err := x.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Chunk.ID)
	require.NoError(t, x.Clear(ctx))
}

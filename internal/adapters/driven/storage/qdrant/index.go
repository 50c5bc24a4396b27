// Package qdrant provides a vector index stored in a Qdrant collection.
//
// The adapter talks to Qdrant over gRPC. The configured collection name is an
// alias: a rebuild fills a new physical collection named <name>_<unix nanos>
// and moves the alias to it in one UpdateAliases call, so readers see either
// the previous index or the complete new one. A collection created under the
// plain name by older versions is still read, and is replaced by an alias on
// the next rebuild.
//
// Every point carries a monotonically increasing sequence number in its
// payload, so search results can be re-sorted stably on insertion order when
// scores tie.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	qdrantclient "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

// Payload keys written with every point.
const (
	payloadText       = "text"
	payloadSource     = "source"
	payloadSeq        = "seq"
	payloadChunkID    = "chunk_id"
	payloadDocumentID = "document_id"
	payloadPosition   = "position"
	payloadStart      = "start"
	payloadEnd        = "end"
)

// upsertBatchSize caps the number of points sent per Upsert call.
const upsertBatchSize = 256

// Ensure VectorIndex implements the interfaces.
var (
	_ driven.VectorIndex     = (*VectorIndex)(nil)
	_ driven.AtomicRebuilder = (*VectorIndex)(nil)
)

// Config addresses a Qdrant collection.
type Config struct {
	Host       string
	Port       int
	Collection string
}

// VectorIndex stores entries as points in one Qdrant collection.
type VectorIndex struct {
	conn        *grpc.ClientConn
	collections qdrantclient.CollectionsClient
	points      qdrantclient.PointsClient
	collection  string

	mu sync.Mutex
	// now names staging collections; replaced in tests.
	now func() time.Time
	// next is the sequence number for the next inserted point.
	next uint64
	// builtEmpty is true after a rebuild with no entries, which leaves no collection.
	builtEmpty bool
	model      string
	builtAt    time.Time
}

// Open connects to Qdrant and inspects the collection.
func Open(ctx context.Context, cfg Config) (*VectorIndex, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant collection name is required")
	}

	target := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant at %s: %w", target, err)
	}

	x := newWithClients(qdrantclient.NewCollectionsClient(conn), qdrantclient.NewPointsClient(conn), cfg.Collection)
	x.conn = conn

	if err := x.init(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return x, nil
}

func newWithClients(
	collections qdrantclient.CollectionsClient,
	points qdrantclient.PointsClient,
	collection string,
) *VectorIndex {
	return &VectorIndex{
		collections: collections,
		points:      points,
		collection:  collection,
		now:         time.Now,
	}
}

// target is what the configured name currently refers to.
type target struct {
	// physical is the collection holding the points; empty when nothing exists.
	physical string
	// aliased is true when the configured name is an alias for physical.
	aliased bool
}

func (t target) exists() bool { return t.physical != "" }

// init seeds the sequence counter from the existing collection.
func (x *VectorIndex) init(ctx context.Context) error {
	exists, err := x.exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	n, err := x.count(ctx)
	if err != nil {
		return err
	}
	x.next = n
	return nil
}

// Upsert writes entries. Point IDs derive from chunk IDs, so an entry with a
// known chunk ID overwrites its point and takes a new sequence number.
func (x *VectorIndex) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	exists, err := x.exists(ctx)
	if err != nil {
		return err
	}

	dims := len(entries[0].Vector)
	if exists {
		info, err := x.info(ctx)
		if err != nil {
			return err
		}
		dims = info.Dimensions
	}
	if err := checkDimensions(entries, dims); err != nil {
		return err
	}

	if !exists {
		staged := x.stageName()
		if err := x.create(ctx, staged, dims); err != nil {
			return err
		}
		if err := x.point(ctx, target{}, staged); err != nil {
			return errors.Join(err, x.deleteCollection(ctx, staged))
		}
	}

	next, err := x.upsertPoints(ctx, x.collection, entries, x.next)
	x.next = next
	if err != nil {
		return err
	}
	x.builtEmpty = false
	x.builtAt = time.Now().UTC()
	return nil
}

// Rebuild replaces the index with entries. The points go into a staging
// collection first; the alias moves to it only once every batch is stored, and
// the previous collection is dropped after the move. A failure before the move
// deletes the staging collection and leaves the current index in place.
func (x *VectorIndex) Rebuild(ctx context.Context, entries []domain.IndexEntry, model string) error {
	var dims int
	if len(entries) > 0 {
		dims = len(entries[0].Vector)
	}
	if err := checkDimensions(entries, dims); err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if len(entries) == 0 {
		if err := x.drop(ctx); err != nil {
			return err
		}
		x.next = 0
		x.builtEmpty = true
		x.model = model
		x.builtAt = time.Now().UTC()
		return nil
	}

	current, err := x.resolve(ctx)
	if err != nil {
		return err
	}

	staged := x.stageName()
	if staged == current.physical {
		staged += "_next"
	}
	if err := x.create(ctx, staged, dims); err != nil {
		return err
	}
	next, err := x.upsertPoints(ctx, staged, entries, 0)
	if err != nil {
		return errors.Join(err, x.deleteCollection(ctx, staged))
	}
	if err := x.point(ctx, current, staged); err != nil {
		return errors.Join(err, x.deleteCollection(ctx, staged))
	}
	if current.aliased && current.physical != staged {
		if err := x.deleteCollection(ctx, current.physical); err != nil {
			return fmt.Errorf("dropping previous collection %s: %w", current.physical, err)
		}
	}

	x.next = next
	x.builtEmpty = false
	x.model = model
	x.builtAt = time.Now().UTC()
	return nil
}

// Search returns the k points most similar to query.
func (x *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievalResult, error) {
	x.mu.Lock()
	builtEmpty := x.builtEmpty
	x.mu.Unlock()

	if builtEmpty {
		return []domain.RetrievalResult{}, nil
	}
	if k <= 0 {
		return []domain.RetrievalResult{}, nil
	}

	resp, err := x.points.Search(ctx, &qdrantclient.SearchPoints{
		CollectionName: x.collection,
		Vector:         query,
		Limit:          uint64(k),
		WithPayload: &qdrantclient.WithPayloadSelector{
			SelectorOptions: &qdrantclient.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, mapError("searching points", err)
	}

	type ranked struct {
		result domain.RetrievalResult
		seq    int64
	}
	hits := make([]ranked, 0, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		hits = append(hits, ranked{
			result: domain.RetrievalResult{
				Chunk:      chunkFromPayload(p.GetPayload()),
				Similarity: float64(p.GetScore()),
			},
			seq: p.GetPayload()[payloadSeq].GetIntegerValue(),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].result.Similarity != hits[j].result.Similarity {
			return hits[i].result.Similarity > hits[j].result.Similarity
		}
		return hits[i].seq < hits[j].seq
	})

	results := make([]domain.RetrievalResult, len(hits))
	for i := range hits {
		results[i] = hits[i].result
	}
	return results, nil
}

// Clear drops the collection.
func (x *VectorIndex) Clear(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.drop(ctx); err != nil {
		return err
	}
	x.next = 0
	x.builtEmpty = false
	x.model = ""
	x.builtAt = time.Time{}
	return nil
}

// Info describes the collection.
func (x *VectorIndex) Info(ctx context.Context) (domain.IndexInfo, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.builtEmpty {
		return domain.IndexInfo{Built: true, Model: x.model, BuiltAt: x.builtAt}, nil
	}

	exists, err := x.exists(ctx)
	if err != nil {
		return domain.IndexInfo{}, err
	}
	if !exists {
		return domain.IndexInfo{}, nil
	}
	return x.info(ctx)
}

// Close closes the gRPC connection.
func (x *VectorIndex) Close() error {
	if x.conn == nil {
		return nil
	}
	return x.conn.Close()
}

func (x *VectorIndex) exists(ctx context.Context) (bool, error) {
	t, err := x.resolve(ctx)
	return t.exists(), err
}

// resolve reports which physical collection the configured name refers to.
func (x *VectorIndex) resolve(ctx context.Context) (target, error) {
	aliases, err := x.collections.ListAliases(ctx, &qdrantclient.ListAliasesRequest{})
	if err != nil {
		return target{}, mapError("listing aliases", err)
	}
	for _, a := range aliases.GetAliases() {
		if a.GetAliasName() == x.collection {
			return target{physical: a.GetCollectionName(), aliased: true}, nil
		}
	}

	resp, err := x.collections.List(ctx, &qdrantclient.ListCollectionsRequest{})
	if err != nil {
		return target{}, mapError("listing collections", err)
	}
	for _, c := range resp.GetCollections() {
		if c.GetName() == x.collection {
			return target{physical: x.collection}, nil
		}
	}
	return target{}, nil
}

func (x *VectorIndex) stageName() string {
	return fmt.Sprintf("%s_%d", x.collection, x.now().UnixNano())
}

// point moves the configured name to staged. Moving an existing alias is a
// single UpdateAliases call. A plain collection under the configured name has
// to be deleted first, as an alias cannot shadow a collection.
func (x *VectorIndex) point(ctx context.Context, current target, staged string) error {
	var actions []*qdrantclient.AliasOperations
	switch {
	case current.aliased:
		actions = append(actions, &qdrantclient.AliasOperations{
			Action: &qdrantclient.AliasOperations_DeleteAlias{
				DeleteAlias: &qdrantclient.DeleteAlias{AliasName: x.collection},
			},
		})
	case current.exists():
		if err := x.deleteCollection(ctx, current.physical); err != nil {
			return err
		}
	}
	actions = append(actions, &qdrantclient.AliasOperations{
		Action: &qdrantclient.AliasOperations_CreateAlias{
			CreateAlias: &qdrantclient.CreateAlias{CollectionName: staged, AliasName: x.collection},
		},
	})

	if _, err := x.collections.UpdateAliases(ctx, &qdrantclient.ChangeAliases{Actions: actions}); err != nil {
		return mapError("switching alias", err)
	}
	return nil
}

func (x *VectorIndex) count(ctx context.Context) (uint64, error) {
	exact := true
	resp, err := x.points.Count(ctx, &qdrantclient.CountPoints{
		CollectionName: x.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, mapError("counting points", err)
	}
	return resp.GetResult().GetCount(), nil
}

func (x *VectorIndex) info(ctx context.Context) (domain.IndexInfo, error) {
	resp, err := x.collections.Get(ctx, &qdrantclient.GetCollectionInfoRequest{CollectionName: x.collection})
	if err != nil {
		return domain.IndexInfo{}, mapError("getting collection info", err)
	}
	ci := resp.GetResult()
	return domain.IndexInfo{
		Built:      true,
		Entries:    int(ci.GetPointsCount()),
		Dimensions: int(ci.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()),
		Model:      x.model,
		BuiltAt:    x.builtAt,
	}, nil
}

func (x *VectorIndex) create(ctx context.Context, name string, dims int) error {
	_, err := x.collections.Create(ctx, &qdrantclient.CreateCollection{
		CollectionName: name,
		VectorsConfig: &qdrantclient.VectorsConfig{
			Config: &qdrantclient.VectorsConfig_Params{
				Params: &qdrantclient.VectorParams{
					Size:     uint64(dims),
					Distance: qdrantclient.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return mapError("creating collection", err)
	}
	return nil
}

// drop removes the alias and the collection behind it.
func (x *VectorIndex) drop(ctx context.Context) error {
	t, err := x.resolve(ctx)
	if err != nil || !t.exists() {
		return err
	}
	if t.aliased {
		if _, err := x.collections.UpdateAliases(ctx, &qdrantclient.ChangeAliases{
			Actions: []*qdrantclient.AliasOperations{{
				Action: &qdrantclient.AliasOperations_DeleteAlias{
					DeleteAlias: &qdrantclient.DeleteAlias{AliasName: x.collection},
				},
			}},
		}); err != nil {
			return mapError("deleting alias", err)
		}
	}
	return x.deleteCollection(ctx, t.physical)
}

func (x *VectorIndex) deleteCollection(ctx context.Context, name string) error {
	if _, err := x.collections.Delete(ctx, &qdrantclient.DeleteCollection{CollectionName: name}); err != nil {
		return mapError("deleting collection "+name, err)
	}
	return nil
}

// upsertPoints writes entries to collection in batches, numbering them from
// seq. It returns the sequence number after the last point written.
func (x *VectorIndex) upsertPoints(ctx context.Context, collection string, entries []domain.IndexEntry, seq uint64) (uint64, error) {
	wait := true
	for start := 0; start < len(entries); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(entries))

		batch := make([]*qdrantclient.PointStruct, 0, end-start)
		for i := start; i < end; i++ {
			batch = append(batch, toPoint(entries[i], seq))
			seq++
		}

		if _, err := x.points.Upsert(ctx, &qdrantclient.UpsertPoints{
			CollectionName: collection,
			Wait:           &wait,
			Points:         batch,
		}); err != nil {
			return seq, mapError("upserting points", err)
		}
	}
	return seq, nil
}

func toPoint(e domain.IndexEntry, seq uint64) *qdrantclient.PointStruct {
	c := e.Chunk
	return &qdrantclient.PointStruct{
		Id: &qdrantclient.PointId{
			PointIdOptions: &qdrantclient.PointId_Uuid{Uuid: pointID(c.ID)},
		},
		Vectors: &qdrantclient.Vectors{
			VectorsOptions: &qdrantclient.Vectors_Vector{
				Vector: &qdrantclient.Vector{Data: e.Vector},
			},
		},
		Payload: map[string]*qdrantclient.Value{
			payloadText:       stringValue(c.Content),
			payloadSource:     stringValue(c.Source),
			payloadChunkID:    stringValue(c.ID),
			payloadDocumentID: stringValue(c.DocumentID),
			payloadSeq:        intValue(int64(seq)),
			payloadPosition:   intValue(int64(c.Position)),
			payloadStart:      intValue(int64(c.Start)),
			payloadEnd:        intValue(int64(c.End)),
		},
	}
}

// pointID maps a chunk ID to a stable UUID, as Qdrant accepts only UUIDs or integers.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}

func chunkFromPayload(p map[string]*qdrantclient.Value) domain.Chunk {
	source := p[payloadSource].GetStringValue()
	return domain.Chunk{
		ID:         p[payloadChunkID].GetStringValue(),
		DocumentID: p[payloadDocumentID].GetStringValue(),
		Source:     source,
		Content:    p[payloadText].GetStringValue(),
		Position:   int(p[payloadPosition].GetIntegerValue()),
		Start:      int(p[payloadStart].GetIntegerValue()),
		End:        int(p[payloadEnd].GetIntegerValue()),
		Metadata: map[string]any{
			"source": source,
			"seq":    int(p[payloadSeq].GetIntegerValue()),
		},
	}
}

func stringValue(s string) *qdrantclient.Value {
	return &qdrantclient.Value{Kind: &qdrantclient.Value_StringValue{StringValue: s}}
}

func intValue(n int64) *qdrantclient.Value {
	return &qdrantclient.Value{Kind: &qdrantclient.Value_IntegerValue{IntegerValue: n}}
}

func checkDimensions(entries []domain.IndexEntry, dims int) error {
	for i := range entries {
		if n := len(entries[i].Vector); n == 0 || n != dims {
			return fmt.Errorf("%w: entry %q has %d dimensions, want %d",
				domain.ErrDimensionMismatch, entries[i].Chunk.ID, n, dims)
		}
	}
	return nil
}

// mapError turns a missing collection into ErrIndexUnavailable.
func mapError(op string, err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s: %w", op, domain.ErrIndexUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
	"github.com/custodia-labs/prepkit/internal/core/ports/driving"
	"github.com/custodia-labs/prepkit/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// Default embedding fan-out.
const (
	DefaultBatchSize   = 32
	DefaultConcurrency = 4
)

// IngestOptions tunes an IngestService. Zero values use the defaults.
type IngestOptions struct {
	// BatchSize is the number of chunks per EmbedBatch call.
	BatchSize int

	// Concurrency is the number of EmbedBatch calls in flight.
	Concurrency int

	// RatePerSecond limits EmbedBatch calls; 0 disables limiting.
	RatePerSecond float64

	// Gate is shared with the Engine so the swap excludes queries.
	Gate *IndexGate

	// Metrics records the run.
	Metrics driven.MetricsRecorder
}

// IngestService rebuilds the vector index from a corpus directory.
type IngestService struct {
	reader      driven.CorpusReader
	normalisers driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
	embedding   driven.EmbeddingService
	index       driven.VectorIndex

	batchSize   int
	concurrency int
	limiter     *rate.Limiter
	gate        *IndexGate
	metrics     driven.MetricsRecorder
}

// NewIngestService creates an ingestion service.
func NewIngestService(
	reader driven.CorpusReader,
	normalisers driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedding driven.EmbeddingService,
	index driven.VectorIndex,
	opts IngestOptions,
) *IngestService {
	s := &IngestService{
		reader:      reader,
		normalisers: normalisers,
		pipeline:    pipeline,
		embedding:   embedding,
		index:       index,
		batchSize:   opts.BatchSize,
		concurrency: opts.Concurrency,
		gate:        opts.Gate,
		metrics:     opts.Metrics,
	}
	if s.batchSize <= 0 {
		s.batchSize = DefaultBatchSize
	}
	if s.concurrency <= 0 {
		s.concurrency = DefaultConcurrency
	}
	if opts.RatePerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}
	if s.gate == nil {
		s.gate = NewIndexGate()
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	return s
}

// Ingest reads dir, chunks and embeds every document and replaces the index.
// The previous index is left untouched unless every step before the swap succeeds.
func (s *IngestService) Ingest(ctx context.Context, dir string) (report *domain.IngestReport, err error) {
	start := time.Now()
	report = &domain.IngestReport{Dir: dir}
	defer func() {
		report.Duration = time.Since(start)
		s.metrics.ObserveIngest(report.Documents, report.Chunks, report.Duration, err)
	}()

	logger.Section("Ingestion")
	logger.Info("reading corpus %s", dir)

	raws, skipped, err := s.reader.Read(ctx, dir)
	if err != nil {
		return report, &domain.IngestionError{Dir: dir, Err: err}
	}
	report.Skipped = skipped

	docs := s.normalise(ctx, raws, report)
	report.Documents = len(docs)
	if len(docs) == 0 {
		return report, &domain.IngestionError{Dir: dir, Err: domain.ErrEmptyCorpus}
	}

	chunks, err := s.pipeline.ProcessAll(ctx, docs)
	if err != nil {
		return report, &domain.IngestionError{Dir: dir, Err: fmt.Errorf("chunk: %w", err)}
	}
	if len(chunks) == 0 {
		return report, &domain.IngestionError{Dir: dir, Err: domain.ErrEmptyCorpus}
	}
	logger.Debug("chunked %d documents into %d chunks", len(docs), len(chunks))

	vectors, err := s.embed(ctx, chunks)
	if err != nil {
		return report, &domain.IngestionError{Dir: dir, Err: fmt.Errorf("embed: %w", err)}
	}

	entries := make([]domain.IndexEntry, len(chunks))
	dims := len(vectors[0])
	for i := range chunks {
		if len(vectors[i]) != dims {
			return report, &domain.IngestionError{Dir: dir, Err: fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				domain.ErrDimensionMismatch, i, len(vectors[i]), dims)}
		}
		entries[i] = domain.IndexEntry{Chunk: chunks[i], Vector: vectors[i]}
	}

	err = s.gate.Write(func() error { return s.replace(ctx, entries) })
	if err != nil {
		return report, &domain.IngestionError{Dir: dir, Err: fmt.Errorf("rebuild index: %w", err)}
	}

	report.Chunks = len(entries)
	report.Dimensions = dims
	logger.Info("indexed %d chunks from %d documents (%d dims)", report.Chunks, report.Documents, dims)
	return report, nil
}

// normalise converts raw documents, skipping the ones no normaliser accepts.
func (s *IngestService) normalise(ctx context.Context, raws []domain.RawDocument, report *domain.IngestReport) []domain.Document {
	docs := make([]domain.Document, 0, len(raws))
	for i := range raws {
		result, err := s.normalisers.Normalise(ctx, &raws[i])
		if err != nil {
			logger.Warn("skipping %s: %v", raws[i].URI, err)
			report.Skipped = append(report.Skipped, sourceOf(&raws[i]))
			continue
		}
		docs = append(docs, result.Document)
	}
	return docs
}

func sourceOf(raw *domain.RawDocument) string {
	if src, ok := raw.Metadata["source"].(string); ok && src != "" {
		return src
	}
	return raw.URI
}

// embed computes one vector per chunk in batches, several batches at a time.
// The result is in chunk order.
func (s *IngestService) embed(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for lo := 0; lo < len(chunks); lo += s.batchSize {
		hi := min(lo+s.batchSize, len(chunks))
		g.Go(func() error {
			if s.limiter != nil {
				if err := s.limiter.Wait(gctx); err != nil {
					return err
				}
			}
			texts := make([]string, hi-lo)
			for i := lo; i < hi; i++ {
				texts[i-lo] = chunks[i].Content
			}
			batch, err := s.embedding.EmbedBatch(gctx, texts)
			if err != nil {
				return fmt.Errorf("batch %d-%d: %w", lo, hi, err)
			}
			if len(batch) != len(texts) {
				return fmt.Errorf("batch %d-%d: got %d vectors for %d texts", lo, hi, len(batch), len(texts))
			}
			copy(vectors[lo:hi], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// replace swaps the index contents. Indexes without an atomic rebuild are
// cleared first, so a failed upsert leaves the index empty.
func (s *IngestService) replace(ctx context.Context, entries []domain.IndexEntry) error {
	if r, ok := s.index.(driven.AtomicRebuilder); ok {
		return r.Rebuild(ctx, entries, s.embedding.ModelName())
	}
	if err := s.index.Clear(ctx); err != nil {
		return err
	}
	if err := s.index.Upsert(ctx, entries); err != nil {
		return errors.Join(err, s.index.Clear(ctx))
	}
	return nil
}

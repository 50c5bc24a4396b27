package resilience

import (
	"context"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

// Ensure decorators implement their ports.
var (
	_ driven.LLMService       = (*LLMService)(nil)
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.Reranker         = (*Reranker)(nil)
	_ driven.VectorIndex      = (*VectorIndex)(nil)
	_ driven.AtomicRebuilder  = (*rebuildingIndex)(nil)
)

// LLMService applies a policy to Generate.
type LLMService struct {
	inner  driven.LLMService
	policy Policy
}

// WrapLLM decorates an LLM service.
func WrapLLM(inner driven.LLMService, p Policy) *LLMService {
	return &LLMService{inner: inner, policy: p}
}

// Generate calls the wrapped service under the policy.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	var out string
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.inner.Generate(ctx, prompt, opts)
		return err
	})
	return out, err
}

func (s *LLMService) ModelName() string              { return s.inner.ModelName() }
func (s *LLMService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }
func (s *LLMService) Close() error                   { return s.inner.Close() }

// EmbeddingService applies a policy to every embedding call.
type EmbeddingService struct {
	inner  driven.EmbeddingService
	policy Policy
}

// WrapEmbedding decorates an embedding service.
func WrapEmbedding(inner driven.EmbeddingService, p Policy) *EmbeddingService {
	return &EmbeddingService{inner: inner, policy: p}
}

// Embed calls the wrapped service under the policy.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.inner.Embed(ctx, text)
		return err
	})
	return out, err
}

// EmbedBatch calls the wrapped service under the policy.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.inner.EmbedBatch(ctx, texts)
		return err
	})
	return out, err
}

func (s *EmbeddingService) Dimensions() int                { return s.inner.Dimensions() }
func (s *EmbeddingService) ModelName() string              { return s.inner.ModelName() }
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }
func (s *EmbeddingService) Close() error                   { return s.inner.Close() }

// Reranker applies a policy to Score.
type Reranker struct {
	inner  driven.Reranker
	policy Policy
}

// WrapReranker decorates a reranker.
func WrapReranker(inner driven.Reranker, p Policy) *Reranker {
	return &Reranker{inner: inner, policy: p}
}

// Score calls the wrapped reranker under the policy.
func (r *Reranker) Score(ctx context.Context, query string, passages []string) ([]float64, error) {
	var out []float64
	err := r.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.inner.Score(ctx, query, passages)
		return err
	})
	return out, err
}

func (r *Reranker) ModelName() string              { return r.inner.ModelName() }
func (r *Reranker) Ping(ctx context.Context) error { return r.inner.Ping(ctx) }
func (r *Reranker) Close() error                   { return r.inner.Close() }

// VectorIndex applies a policy to reads. Writes pass straight through:
// rebuilds of a large corpus outlive any per-call read timeout.
type VectorIndex struct {
	inner  driven.VectorIndex
	policy Policy
}

type rebuildingIndex struct {
	*VectorIndex
	rebuilder driven.AtomicRebuilder
}

// WrapIndex decorates a vector index. The result implements
// driven.AtomicRebuilder exactly when inner does.
func WrapIndex(inner driven.VectorIndex, p Policy) driven.VectorIndex {
	v := &VectorIndex{inner: inner, policy: p}
	if rb, ok := inner.(driven.AtomicRebuilder); ok {
		return &rebuildingIndex{VectorIndex: v, rebuilder: rb}
	}
	return v
}

// Search calls the wrapped index under the policy.
func (v *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievalResult, error) {
	var out []domain.RetrievalResult
	err := v.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = v.inner.Search(ctx, query, k)
		return err
	})
	return out, err
}

// Info calls the wrapped index under the policy.
func (v *VectorIndex) Info(ctx context.Context) (domain.IndexInfo, error) {
	var out domain.IndexInfo
	err := v.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = v.inner.Info(ctx)
		return err
	})
	return out, err
}

func (v *VectorIndex) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	return v.inner.Upsert(ctx, entries)
}

func (v *VectorIndex) Clear(ctx context.Context) error { return v.inner.Clear(ctx) }
func (v *VectorIndex) Close() error                    { return v.inner.Close() }

func (r *rebuildingIndex) Rebuild(ctx context.Context, entries []domain.IndexEntry, model string) error {
	return r.rebuilder.Rebuild(ctx, entries, model)
}

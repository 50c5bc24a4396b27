// Package ai builds the model and index adapters named by the application settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/prepkit/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/prepkit/internal/adapters/driven/embedding/openai"
	teiembed "github.com/custodia-labs/prepkit/internal/adapters/driven/embedding/tei"
	anthropicllm "github.com/custodia-labs/prepkit/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/prepkit/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/prepkit/internal/adapters/driven/llm/openai"
	coherererank "github.com/custodia-labs/prepkit/internal/adapters/driven/rerank/cohere"
	teirerank "github.com/custodia-labs/prepkit/internal/adapters/driven/rerank/tei"
	"github.com/custodia-labs/prepkit/internal/adapters/driven/resilience"
	"github.com/custodia-labs/prepkit/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/prepkit/internal/adapters/driven/storage/qdrant"
	"github.com/custodia-labs/prepkit/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
	"github.com/custodia-labs/prepkit/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.ComponentLoader = (*Loader)(nil)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// SettingsSource returns the current application settings.
type SettingsSource func() (*domain.AppSettings, error)

// Loader builds, validates and decorates the engine components.
type Loader struct {
	settings SettingsSource
	ping     bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithoutPing skips connectivity checks; components are still constructed.
func WithoutPing() LoaderOption {
	return func(l *Loader) { l.ping = false }
}

// NewLoader creates a component loader reading settings on every Load.
func NewLoader(settings SettingsSource, opts ...LoaderOption) *Loader {
	l := &Loader{settings: settings, ping: true}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load builds every component the query engine needs. Each one is pinged
// and wrapped with the resilience policies from settings. Any failure closes
// what was already built and returns the error.
func (l *Loader) Load(ctx context.Context) (*driven.Components, error) {
	s, err := l.settings()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	policies := resilience.FromSettings(s.Resilience)
	comps := &driven.Components{}

	fail := func(err error) (*driven.Components, error) {
		_ = comps.Close()
		return nil, err
	}

	emb, err := l.embedding(ctx, &s.Embedding)
	if err != nil {
		return fail(err)
	}
	comps.Embedding = resilience.WrapEmbedding(emb, policies.Embedding)

	rr, err := l.reranker(ctx, &s.Rerank)
	if err != nil {
		return fail(err)
	}
	comps.Reranker = resilience.WrapReranker(rr, policies.Rerank)

	llm, err := l.llm(ctx, &s.LLM)
	if err != nil {
		return fail(err)
	}
	comps.LLM = resilience.WrapLLM(llm, policies.LLM)

	idx, err := OpenIndex(ctx, &s.VectorIndex)
	if err != nil {
		return fail(err)
	}
	comps.Index = resilience.WrapIndex(idx, policies.Index)

	if info, err := idx.Info(ctx); err == nil && info.Built && info.Dimensions > 0 &&
		emb.Dimensions() > 0 && info.Dimensions != emb.Dimensions() {
		comps.Warnings = append(comps.Warnings, fmt.Sprintf(
			"index holds %d-dimension vectors but %s produces %d; run ingest again",
			info.Dimensions, emb.ModelName(), emb.Dimensions()))
	}

	logger.Debug("components loaded: embedding=%s rerank=%s llm=%s index=%s",
		emb.ModelName(), rr.ModelName(), llm.ModelName(), s.VectorIndex.Backend)
	return comps, nil
}

// LoadIngest builds only the embedding service and vector index.
// Ingestion does not need the reranker or the LLM.
func (l *Loader) LoadIngest(ctx context.Context) (*driven.Components, error) {
	s, err := l.settings()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	policies := resilience.FromSettings(s.Resilience)

	emb, err := l.embedding(ctx, &s.Embedding)
	if err != nil {
		return nil, err
	}
	idx, err := OpenIndex(ctx, &s.VectorIndex)
	if err != nil {
		_ = emb.Close()
		return nil, err
	}
	return &driven.Components{
		Embedding: resilience.WrapEmbedding(emb, policies.Embedding),
		Index:     resilience.WrapIndex(idx, policies.Index),
	}, nil
}

func (l *Loader) embedding(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: provider %q is not configured", domain.ErrEmbeddingUnavailable, settings.Provider)
	}
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if err := l.check(ctx, svc); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

func (l *Loader) reranker(ctx context.Context, settings *domain.RerankSettings) (driven.Reranker, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: provider %q is not configured", domain.ErrRerankerUnavailable, settings.Provider)
	}
	svc, err := CreateReranker(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRerankerUnavailable, err)
	}
	if err := l.check(ctx, svc); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrRerankerUnavailable, err)
	}
	return svc, nil
}

func (l *Loader) llm(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: provider %q is not configured (is the API key set?)",
			domain.ErrLLMUnavailable, settings.Provider)
	}
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if err := l.check(ctx, svc); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (l *Loader) check(ctx context.Context, p pinger) error {
	if !l.ping {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.Ping(ctx)
}

// CreateEmbeddingService creates the embedding adapter named by settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case domain.AIProviderTEI:
		return teiembed.NewEmbeddingService(teiembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			APIKey:  settings.APIKey,
		}), nil

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateLLMService creates the LLM adapter named by settings.
// Groq is served by the OpenAI-compatible adapter.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	switch settings.Provider {
	case domain.AIProviderGroq:
		baseURL := settings.BaseURL
		if baseURL == "" {
			baseURL = openaillm.GroqBaseURL
		}
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: baseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: LLM provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateReranker creates the reranker adapter named by settings.
func CreateReranker(settings *domain.RerankSettings) (driven.Reranker, error) {
	switch settings.Provider {
	case domain.AIProviderTEI:
		return teirerank.NewReranker(teirerank.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			APIKey:  settings.APIKey,
		}), nil

	case domain.AIProviderCohere:
		return coherererank.NewReranker(coherererank.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: rerank provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}

// OpenIndex opens the vector index backend named by settings.
// An opened backend with nothing built is not an error.
func OpenIndex(ctx context.Context, settings *domain.VectorIndexSettings) (driven.VectorIndex, error) {
	var (
		idx driven.VectorIndex
		err error
	)
	switch settings.Backend {
	case domain.VectorBackendSQLite:
		idx, err = sqlite.Open(settings.Dir)
	case domain.VectorBackendQdrant:
		idx, err = qdrant.Open(ctx, qdrant.Config{
			Host:       settings.QdrantHost,
			Port:       settings.QdrantPort,
			Collection: settings.Collection,
		})
	case domain.VectorBackendMemory:
		idx = memory.NewVectorIndex()
	default:
		err = fmt.Errorf("%w: vector backend %q", domain.ErrUnsupportedType, settings.Backend)
	}
	if err != nil {
		return nil, errors.Join(domain.ErrVectorIndexUnavailable, err)
	}
	return idx, nil
}

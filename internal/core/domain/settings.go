package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a model service provider for embeddings, reranking or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderTEI is a HuggingFace text-embeddings-inference server.
	// It serves both sentence embeddings and cross-encoder reranking.
	AIProviderTEI AIProvider = "tei"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGroq is the Groq OpenAI-compatible cloud API.
	AIProviderGroq AIProvider = "groq"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderCohere is a Cohere-compatible rerank API (also Jina, Voyage).
	AIProviderCohere AIProvider = "cohere"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderTEI, AIProviderOllama, AIProviderOpenAI, AIProviderGroq,
		AIProviderAnthropic, AIProviderCohere:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderOpenAI, AIProviderGroq, AIProviderAnthropic, AIProviderCohere:
		return true
	default:
		return false
	}
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderTEI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderTEI:
		return "Text Embeddings Inference (local)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGroq:
		return "Groq (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderCohere:
		return "Cohere-compatible rerank (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for TEI and Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	return providerConfigured(e.Provider, e.APIKey, AllEmbeddingProviders())
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey is the API key (for Groq/OpenAI/Anthropic).
	APIKey string

	// MaxTokens caps the generated length.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	return providerConfigured(l.Provider, l.APIKey, AllLLMProviders())
}

// RerankSettings holds cross-encoder reranker configuration.
type RerankSettings struct {
	// Provider is the rerank service provider.
	Provider AIProvider

	// Model is the cross-encoder model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for Cohere-compatible services).
	APIKey string
}

// IsConfigured returns true if the rerank provider is set up.
func (r RerankSettings) IsConfigured() bool {
	return providerConfigured(r.Provider, r.APIKey, AllRerankProviders())
}

func providerConfigured(p AIProvider, apiKey string, allowed []AIProvider) bool {
	if !p.IsValid() {
		return false
	}
	found := false
	for _, a := range allowed {
		if a == p {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	if p.RequiresAPIKey() && apiKey == "" {
		return false
	}
	return true
}

// VectorBackend selects the vector index implementation.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendSQLite persists the index in a SQLite file inside the index directory.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendQdrant stores the index in a Qdrant collection.
	VectorBackendQdrant VectorBackend = "qdrant"

	// VectorBackendMemory keeps the index in process memory only.
	VectorBackendMemory VectorBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendSQLite, VectorBackendQdrant, VectorBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// VectorIndexSettings holds vector index configuration.
type VectorIndexSettings struct {
	// Backend is the index implementation.
	Backend VectorBackend

	// Dir is the index directory for the sqlite backend.
	Dir string

	// QdrantHost and QdrantPort address the Qdrant gRPC endpoint.
	QdrantHost string
	QdrantPort int

	// Collection is the Qdrant collection name.
	Collection string
}

// ResilienceSettings configures timeouts and retries at model and index boundaries.
type ResilienceSettings struct {
	// LLMTimeout bounds a single generation attempt.
	LLMTimeout time.Duration

	// EmbedTimeout bounds a single embedding or rerank attempt.
	EmbedTimeout time.Duration

	// IndexTimeout bounds a single vector index call.
	IndexTimeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// BackoffBase is the first retry delay; later delays double up to 5s.
	BackoffBase time.Duration

	// LLMRatePerSecond limits generation calls; 0 disables limiting.
	LLMRatePerSecond float64
}

// IngestSettings configures corpus loading and chunking.
type IngestSettings struct {
	// CorpusDir is the directory of source documents.
	CorpusDir string

	// Extensions lists file extensions loaded from the corpus.
	Extensions []string

	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the overlap between consecutive chunks.
	ChunkOverlap int

	// BatchSize is the number of chunks per embedding request.
	BatchSize int

	// Concurrency is the number of embedding requests in flight.
	Concurrency int

	// RatePerSecond limits embedding batches during ingestion; 0 disables limiting.
	RatePerSecond float64
}

// ServerSettings configures the HTTP transport.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// AllowOrigins lists CORS origins.
	AllowOrigins []string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	Rerank      RerankSettings
	VectorIndex VectorIndexSettings
	Resilience  ResilienceSettings
	Ingest      IngestSettings
	Server      ServerSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The model choices reproduce the reference deployment: mpnet embeddings,
// a MiniLM cross-encoder and Llama 3.3 70B on Groq at temperature 0.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderTEI,
			Model:    DefaultEmbeddingModels()[AIProviderTEI],
			BaseURL:  "http://localhost:8080",
		},
		LLM: LLMSettings{
			Provider:  AIProviderGroq,
			Model:     DefaultLLMModels()[AIProviderGroq],
			MaxTokens: 2048,
		},
		Rerank: RerankSettings{
			Provider: AIProviderTEI,
			Model:    DefaultRerankModels()[AIProviderTEI],
			BaseURL:  "http://localhost:8081",
		},
		VectorIndex: VectorIndexSettings{
			Backend:    VectorBackendSQLite,
			Dir:        "index",
			QdrantHost: "localhost",
			QdrantPort: 6334,
			Collection: "prepkit",
		},
		Resilience: ResilienceSettings{
			LLMTimeout:   120 * time.Second,
			EmbedTimeout: 30 * time.Second,
			IndexTimeout: 10 * time.Second,
			MaxRetries:   2,
			BackoffBase:  200 * time.Millisecond,
		},
		Ingest: IngestSettings{
			CorpusDir:    "knowledge_base",
			Extensions:   []string{".txt"},
			ChunkSize:    500,
			ChunkOverlap: 50,
			BatchSize:    32,
			Concurrency:  4,
		},
		Server: ServerSettings{
			Addr:         ":8000",
			AllowOrigins: []string{"*"},
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderTEI,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGroq,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderOllama,
	}
}

// AllRerankProviders returns providers that support cross-encoder reranking.
func AllRerankProviders() []AIProvider {
	return []AIProvider{
		AIProviderTEI,
		AIProviderCohere,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderTEI:    "sentence-transformers/all-mpnet-base-v2",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGroq:      "llama-3.3-70b-versatile",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// DefaultRerankModels returns default models for each rerank provider.
func DefaultRerankModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderTEI:    "cross-encoder/ms-marco-MiniLM-L-6-v2",
		AIProviderCohere: "rerank-english-v3.0",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Sentence-transformers models
		"sentence-transformers/all-mpnet-base-v2": 768,
		"sentence-transformers/all-MiniLM-L6-v2":  384,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

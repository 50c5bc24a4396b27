package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

// fakeProviders serves the health endpoints every default adapter pings.
func fakeProviders(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/models":
			_, _ = w.Write([]byte(`{"data":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testSettings(baseURL string) *domain.AppSettings {
	s := domain.DefaultAppSettings()
	s.Embedding.BaseURL = baseURL
	s.Rerank.BaseURL = baseURL
	s.LLM.BaseURL = baseURL
	s.LLM.APIKey = "gsk-test"
	s.VectorIndex.Backend = domain.VectorBackendMemory
	return &s
}

func source(s *domain.AppSettings) SettingsSource {
	return func() (*domain.AppSettings, error) { return s, nil }
}

func TestLoader_Load(t *testing.T) {
	srv := fakeProviders(t)
	loader := NewLoader(source(testSettings(srv.URL)))

	comps, err := loader.Load(context.Background())
	require.NoError(t, err)
	defer comps.Close()

	require.NotNil(t, comps.Embedding)
	require.NotNil(t, comps.Reranker)
	require.NotNil(t, comps.LLM)
	require.NotNil(t, comps.Index)
	assert.Equal(t, 768, comps.Embedding.Dimensions())
	assert.Equal(t, "llama-3.3-70b-versatile", comps.LLM.ModelName())
	assert.Equal(t, "cross-encoder/ms-marco-MiniLM-L-6-v2", comps.Reranker.ModelName())

	_, ok := comps.Index.(driven.AtomicRebuilder)
	assert.True(t, ok)
}

func TestLoader_Load_MissingLLMKey(t *testing.T) {
	srv := fakeProviders(t)
	s := testSettings(srv.URL)
	s.LLM.APIKey = ""

	_, err := NewLoader(source(s)).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestLoader_Load_UnreachableEmbedding(t *testing.T) {
	srv := fakeProviders(t)
	s := testSettings(srv.URL)
	s.Embedding.BaseURL = "http://127.0.0.1:1"

	_, err := NewLoader(source(s)).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestLoader_Load_WithoutPing(t *testing.T) {
	s := testSettings("http://127.0.0.1:1")

	comps, err := NewLoader(source(s), WithoutPing()).Load(context.Background())
	require.NoError(t, err)
	assert.NoError(t, comps.Close())
}

func TestLoader_Load_BadBackend(t *testing.T) {
	s := testSettings("http://127.0.0.1:1")
	s.VectorIndex.Backend = "chroma"

	_, err := NewLoader(source(s), WithoutPing()).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestLoader_LoadIngest(t *testing.T) {
	s := testSettings("http://127.0.0.1:1")
	s.LLM.APIKey = ""
	s.VectorIndex.Backend = domain.VectorBackendSQLite
	s.VectorIndex.Dir = t.TempDir()

	comps, err := NewLoader(source(s), WithoutPing()).LoadIngest(context.Background())
	require.NoError(t, err)
	defer comps.Close()

	assert.NotNil(t, comps.Embedding)
	assert.NotNil(t, comps.Index)
	assert.Nil(t, comps.LLM)
	assert.Nil(t, comps.Reranker)
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings domain.EmbeddingSettings
		wantErr  bool
	}{
		{"tei", domain.EmbeddingSettings{Provider: domain.AIProviderTEI}, false},
		{"ollama", domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "nomic-embed-text"}, false},
		{"openai", domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "k"}, false},
		{"openai without key", domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}, true},
		{"anthropic has no embeddings", domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(&tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, svc)
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings domain.LLMSettings
		wantErr  bool
	}{
		{"groq", domain.LLMSettings{Provider: domain.AIProviderGroq, APIKey: "k"}, false},
		{"openai", domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k"}, false},
		{"anthropic", domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"}, false},
		{"ollama", domain.LLMSettings{Provider: domain.AIProviderOllama}, false},
		{"tei cannot generate", domain.LLMSettings{Provider: domain.AIProviderTEI}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(&tt.settings)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnsupportedType)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, svc)
		})
	}
}

func TestCreateReranker(t *testing.T) {
	rr, err := CreateReranker(&domain.RerankSettings{Provider: domain.AIProviderTEI})
	require.NoError(t, err)
	assert.NotNil(t, rr)

	_, err = CreateReranker(&domain.RerankSettings{Provider: domain.AIProviderCohere})
	assert.Error(t, err, "cohere needs an API key")

	_, err = CreateReranker(&domain.RerankSettings{Provider: domain.AIProviderOllama})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

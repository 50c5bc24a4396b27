package services

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
	"github.com/custodia-labs/prepkit/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Environment variables that override stored API keys.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvLLMAPIKey       = "PREPKIT_LLM_API_KEY"
	EnvEmbeddingAPIKey = "PREPKIT_EMBEDDING_API_KEY"
	EnvRerankAPIKey    = "PREPKIT_RERANK_API_KEY"
)

// providerKeyEnv names the conventional API key variable of each cloud provider.
// It is consulted when neither the config file nor the PREPKIT_ variable sets a key.
var providerKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderGroq:      "GROQ_API_KEY",
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
	domain.AIProviderCohere:    "COHERE_API_KEY",
}

// setting binds a config key to a field of AppSettings.
// The accessor returns a pointer to the field.
type setting struct {
	key    string
	field  func(s *domain.AppSettings) any
	secret bool
}

//nolint:gosec // G101: These are config key names, not actual credentials.
var settingsTable = []setting{
	{key: "embedding.provider", field: func(s *domain.AppSettings) any { return &s.Embedding.Provider }},
	{key: "embedding.model", field: func(s *domain.AppSettings) any { return &s.Embedding.Model }},
	{key: "embedding.base_url", field: func(s *domain.AppSettings) any { return &s.Embedding.BaseURL }},
	{key: "embedding.api_key", field: func(s *domain.AppSettings) any { return &s.Embedding.APIKey }, secret: true},

	{key: "llm.provider", field: func(s *domain.AppSettings) any { return &s.LLM.Provider }},
	{key: "llm.model", field: func(s *domain.AppSettings) any { return &s.LLM.Model }},
	{key: "llm.base_url", field: func(s *domain.AppSettings) any { return &s.LLM.BaseURL }},
	{key: "llm.api_key", field: func(s *domain.AppSettings) any { return &s.LLM.APIKey }, secret: true},
	{key: "llm.max_tokens", field: func(s *domain.AppSettings) any { return &s.LLM.MaxTokens }},

	{key: "rerank.provider", field: func(s *domain.AppSettings) any { return &s.Rerank.Provider }},
	{key: "rerank.model", field: func(s *domain.AppSettings) any { return &s.Rerank.Model }},
	{key: "rerank.base_url", field: func(s *domain.AppSettings) any { return &s.Rerank.BaseURL }},
	{key: "rerank.api_key", field: func(s *domain.AppSettings) any { return &s.Rerank.APIKey }, secret: true},

	{key: "vector_index.backend", field: func(s *domain.AppSettings) any { return &s.VectorIndex.Backend }},
	{key: "vector_index.dir", field: func(s *domain.AppSettings) any { return &s.VectorIndex.Dir }},
	{key: "vector_index.qdrant_host", field: func(s *domain.AppSettings) any { return &s.VectorIndex.QdrantHost }},
	{key: "vector_index.qdrant_port", field: func(s *domain.AppSettings) any { return &s.VectorIndex.QdrantPort }},
	{key: "vector_index.collection", field: func(s *domain.AppSettings) any { return &s.VectorIndex.Collection }},

	{key: "resilience.llm_timeout", field: func(s *domain.AppSettings) any { return &s.Resilience.LLMTimeout }},
	{key: "resilience.embed_timeout", field: func(s *domain.AppSettings) any { return &s.Resilience.EmbedTimeout }},
	{key: "resilience.index_timeout", field: func(s *domain.AppSettings) any { return &s.Resilience.IndexTimeout }},
	{key: "resilience.max_retries", field: func(s *domain.AppSettings) any { return &s.Resilience.MaxRetries }},
	{key: "resilience.backoff_base", field: func(s *domain.AppSettings) any { return &s.Resilience.BackoffBase }},
	{key: "resilience.llm_rate_per_second", field: func(s *domain.AppSettings) any { return &s.Resilience.LLMRatePerSecond }},

	{key: "ingest.corpus_dir", field: func(s *domain.AppSettings) any { return &s.Ingest.CorpusDir }},
	{key: "ingest.extensions", field: func(s *domain.AppSettings) any { return &s.Ingest.Extensions }},
	{key: "ingest.chunk_size", field: func(s *domain.AppSettings) any { return &s.Ingest.ChunkSize }},
	{key: "ingest.chunk_overlap", field: func(s *domain.AppSettings) any { return &s.Ingest.ChunkOverlap }},
	{key: "ingest.batch_size", field: func(s *domain.AppSettings) any { return &s.Ingest.BatchSize }},
	{key: "ingest.concurrency", field: func(s *domain.AppSettings) any { return &s.Ingest.Concurrency }},
	{key: "ingest.rate_per_second", field: func(s *domain.AppSettings) any { return &s.Ingest.RatePerSecond }},

	{key: "server.addr", field: func(s *domain.AppSettings) any { return &s.Server.Addr }},
	{key: "server.allow_origins", field: func(s *domain.AppSettings) any { return &s.Server.AllowOrigins }},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithEnv replaces the environment lookup (os.Getenv by default).
func WithEnv(getenv func(string) string) SettingsOption {
	return func(s *SettingsService) { s.getenv = getenv }
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator, opts ...SettingsOption) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves current application settings: defaults, then stored
// values, then API keys from the environment.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()

	for _, st := range settingsTable {
		if _, ok := s.configStore.Get(st.key); !ok {
			continue
		}
		s.load(st.key, st.field(&settings))
	}

	s.applyEnv(&settings)
	return &settings, nil
}

// load copies a stored value into the field. Invalid provider and
// backend names keep the default.
func (s *SettingsService) load(key string, field any) {
	switch p := field.(type) {
	case *string:
		*p = s.configStore.GetString(key)
	case *int:
		*p = s.configStore.GetInt(key)
	case *float64:
		*p = s.configStore.GetFloat(key)
	case *time.Duration:
		if d := s.configStore.GetDuration(key); d > 0 {
			*p = d
		}
	case *[]string:
		if v := s.configStore.GetStringSlice(key); len(v) > 0 {
			*p = v
		}
	case *domain.AIProvider:
		if v := domain.AIProvider(s.configStore.GetString(key)); v.IsValid() {
			*p = v
		}
	case *domain.VectorBackend:
		if v := domain.VectorBackend(s.configStore.GetString(key)); v.IsValid() {
			*p = v
		}
	}
}

func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	settings.LLM.APIKey = s.envKey(EnvLLMAPIKey, settings.LLM.Provider, settings.LLM.APIKey)
	settings.Embedding.APIKey = s.envKey(EnvEmbeddingAPIKey, settings.Embedding.Provider, settings.Embedding.APIKey)
	settings.Rerank.APIKey = s.envKey(EnvRerankAPIKey, settings.Rerank.Provider, settings.Rerank.APIKey)
}

func (s *SettingsService) envKey(name string, provider domain.AIProvider, stored string) string {
	if v := s.getenv(name); v != "" {
		return v
	}
	if stored != "" {
		return stored
	}
	if env, ok := providerKeyEnv[provider]; ok {
		return s.getenv(env)
	}
	return ""
}

// Save persists application settings. Empty API keys are not written,
// so keys supplied through the environment never reach the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	for _, st := range settingsTable {
		val := stored(st.field(settings))
		if st.secret && val == "" {
			continue
		}
		if err := s.configStore.Set(st.key, val); err != nil {
			return fmt.Errorf("save %s: %w", st.key, err)
		}
	}
	return nil
}

// stored converts a field to the value written to the config store.
func stored(field any) any {
	switch p := field.(type) {
	case *string:
		return *p
	case *int:
		return *p
	case *float64:
		return *p
	case *time.Duration:
		return p.String()
	case *[]string:
		return append([]string(nil), (*p)...)
	case *domain.AIProvider:
		return p.String()
	case *domain.VectorBackend:
		return p.String()
	}
	return nil
}

// Set updates a single setting by its config key (e.g. "llm.model").
// The value is parsed according to the field type; lists are comma-separated.
func (s *SettingsService) Set(key, value string) error {
	st, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var scratch domain.AppSettings
	field := st.field(&scratch)
	if err := parseInto(field, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	return s.configStore.Set(key, stored(field))
}

func parseInto(field any, value string) error {
	switch p := field.(type) {
	case *string:
		*p = value
	case *int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("not an integer: %q", value)
		}
		if n < 0 {
			return errors.New("must not be negative")
		}
		*p = n
	case *float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", value)
		}
		if f < 0 {
			return errors.New("must not be negative")
		}
		*p = f
	case *time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		if d <= 0 {
			return errors.New("must be positive")
		}
		*p = d
	case *[]string:
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*p = out
	case *domain.AIProvider:
		v := domain.AIProvider(value)
		if !v.IsValid() {
			return fmt.Errorf("unknown provider %q", value)
		}
		*p = v
	case *domain.VectorBackend:
		v := domain.VectorBackend(value)
		if !v.IsValid() {
			return fmt.Errorf("unknown backend %q", value)
		}
		*p = v
	}
	return nil
}

func lookupSetting(key string) (setting, bool) {
	for _, st := range settingsTable {
		if st.key == key {
			return st, true
		}
	}
	return setting{}, false
}

// Keys returns every recognised config key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingsTable))
	for i, st := range settingsTable {
		keys[i] = st.key
	}
	sort.Strings(keys)
	return keys
}

// IsSecret reports whether key holds a credential that should be masked on display.
func IsSecret(key string) bool {
	st, ok := lookupSetting(key)
	return ok && st.secret
}

// Validate checks that every required provider is configured.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider))
	}
	if !settings.Rerank.IsConfigured() {
		errs = append(errs, fmt.Errorf("rerank provider %q is not configured", settings.Rerank.Provider))
	}
	if !settings.LLM.IsConfigured() {
		msg := fmt.Sprintf("LLM provider %q is not configured", settings.LLM.Provider)
		if settings.LLM.Provider.RequiresAPIKey() && settings.LLM.APIKey == "" {
			msg += fmt.Sprintf(" (set %s or llm.api_key)", EnvLLMAPIKey)
		}
		errs = append(errs, errors.New(msg))
	}
	if !settings.VectorIndex.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("unknown vector backend %q", settings.VectorIndex.Backend))
	}
	if settings.Ingest.ChunkOverlap >= settings.Ingest.ChunkSize {
		errs = append(errs, fmt.Errorf("ingest.chunk_overlap (%d) must be smaller than ingest.chunk_size (%d)",
			settings.Ingest.ChunkOverlap, settings.Ingest.ChunkSize))
	}
	return errors.Join(errs...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// ValidateRerankConfig validates the current reranker configuration by pinging the provider.
func (s *SettingsService) ValidateRerankConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateRerank(&settings.Rerank)
}

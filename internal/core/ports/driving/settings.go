package driving

import "github.com/custodia-labs/prepkit/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single setting by its config key (e.g. "llm.model").
	Set(key, value string) error

	// Keys returns every recognised config key.
	Keys() []string

	// Validate checks that every required provider is configured.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error

	// ValidateRerankConfig validates the current reranker configuration by pinging the provider.
	ValidateRerankConfig() error
}

package ai

import (
	"context"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations by building the
// adapter and pinging it. Unconfigured providers are not an error.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding validates an embedding configuration by pinging the provider.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	svc, err := CreateEmbeddingService(config)
	if err != nil {
		return err
	}
	defer svc.Close()
	return ping(svc)
}

// ValidateLLM validates an LLM configuration by pinging the provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	svc, err := CreateLLMService(config)
	if err != nil {
		return err
	}
	defer svc.Close()
	return ping(svc)
}

// ValidateRerank validates a reranker configuration by pinging the provider.
func (v *ConfigValidator) ValidateRerank(config *domain.RerankSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	svc, err := CreateReranker(config)
	if err != nil {
		return err
	}
	defer svc.Close()
	return ping(svc)
}

func ping(p pinger) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return p.Ping(ctx)
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, the vector index and ingestion options.

Settings are stored in ~/.prepkit/config.toml. API keys may also come from
PREPKIT_LLM_API_KEY, PREPKIT_EMBEDDING_API_KEY, PREPKIT_RERANK_API_KEY or the
provider's own variable such as GROQ_API_KEY.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by key, for example:

  prepkit settings set llm.model llama-3.3-70b-versatile
  prepkit settings set ingest.extensions .txt,.md

Run 'prepkit settings keys' for the full list.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Interactively configure the embedding provider used for ingestion and retrieval.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Interactively configure the LLM provider that generates answers and reports.`,
	RunE:  runSettingsLLM,
}

var settingsRerankCmd = &cobra.Command{
	Use:   "rerank",
	Short: "Configure reranker",
	Long:  `Interactively configure the cross-encoder reranker.`,
	RunE:  runSettingsRerank,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsRerankCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	printProvider(cmd, "Embedding", settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	printProvider(cmd, "Rerank", settings.Rerank.Provider, settings.Rerank.Model,
		settings.Rerank.BaseURL, settings.Rerank.APIKey, settings.Rerank.IsConfigured())
	printProvider(cmd, "LLM", settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())

	cmd.Println("[Vector Index]")
	cmd.Printf("  Backend: %s\n", settings.VectorIndex.Backend)
	switch settings.VectorIndex.Backend {
	case domain.VectorBackendQdrant:
		cmd.Printf("  Qdrant: %s:%d (%s)\n", settings.VectorIndex.QdrantHost,
			settings.VectorIndex.QdrantPort, settings.VectorIndex.Collection)
	case domain.VectorBackendSQLite:
		cmd.Printf("  Directory: %s\n", settings.VectorIndex.Dir)
	case domain.VectorBackendMemory:
	}
	cmd.Println()

	cmd.Println("[Ingest]")
	cmd.Printf("  Corpus: %s\n", settings.Ingest.CorpusDir)
	cmd.Printf("  Extensions: %s\n", strings.Join(settings.Ingest.Extensions, ", "))
	cmd.Printf("  Chunking: %d characters, %d overlap\n", settings.Ingest.ChunkSize, settings.Ingest.ChunkOverlap)
	cmd.Println()

	cmd.Println("[Resilience]")
	cmd.Printf("  Timeouts: llm %s, embed %s, index %s\n", settings.Resilience.LLMTimeout,
		settings.Resilience.EmbedTimeout, settings.Resilience.IndexTimeout)
	cmd.Printf("  Retries: %d (backoff from %s)\n", settings.Resilience.MaxRetries, settings.Resilience.BackoffBase)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'prepkit settings llm' (or embedding, rerank) to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, section string, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("[%s]\n", section)
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	if strings.HasSuffix(key, "api_key") {
		value = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	reader := bufio.NewReader(cmd.InOrStdin())
	return configureProvider(cmd, reader, providerPrompt{
		section:   "embedding",
		title:     "Select Embedding Provider",
		providers: domain.AllEmbeddingProviders(),
		defaults:  domain.DefaultEmbeddingModels(),
		validate:  settingsService.ValidateEmbeddingConfig,
	})
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	reader := bufio.NewReader(cmd.InOrStdin())
	return configureProvider(cmd, reader, providerPrompt{
		section:   "llm",
		title:     "Select LLM Provider",
		providers: domain.AllLLMProviders(),
		defaults:  domain.DefaultLLMModels(),
		validate:  settingsService.ValidateLLMConfig,
	})
}

func runSettingsRerank(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	reader := bufio.NewReader(cmd.InOrStdin())
	return configureProvider(cmd, reader, providerPrompt{
		section:   "rerank",
		title:     "Select Reranker",
		providers: domain.AllRerankProviders(),
		defaults:  domain.DefaultRerankModels(),
		validate:  settingsService.ValidateRerankConfig,
	})
}

// providerPrompt describes one interactive provider configuration.
type providerPrompt struct {
	section   string
	title     string
	providers []domain.AIProvider
	defaults  map[domain.AIProvider]string
	validate  func() error
}

func configureProvider(cmd *cobra.Command, reader *bufio.Reader, p providerPrompt) error {
	cmd.Println(p.title)
	for i, provider := range p.providers {
		cmd.Printf("  %d. %s\n", i+1, provider.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(p.providers), 1)
	selected := p.providers[idx-1]

	defaultModel := p.defaults[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	values := [][2]string{
		{p.section + ".provider", string(selected)},
		{p.section + ".model", model},
	}

	if selected.IsLocal() {
		cmd.Print("Enter base URL (blank for default): ")
		if baseURL := readLine(reader); baseURL != "" {
			values = append(values, [2]string{p.section + ".base_url", baseURL})
		}
	}

	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey := readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
		values = append(values, [2]string{p.section + ".api_key", apiKey})
	}

	for _, kv := range values {
		if err := settingsService.Set(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to configure %s: %w", p.section, err)
		}
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := p.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", p.section, err)
	}
	cmd.Println("OK")

	cmd.Printf("%s provider configured: %s (%s)\n\n", p.section, selected.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo on a terminal and falls back to reader.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

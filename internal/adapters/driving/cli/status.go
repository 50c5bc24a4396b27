package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show engine and index status",
	Long: `Initialises the engine and reports its state, the configured models
and the contents of the vector index.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().Bool("json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if engineService == nil {
		return errors.New("engine not configured")
	}
	if engineService.State() != domain.EngineReady {
		_ = engineService.Initialize(cmd.Context()) //nolint:errcheck // reported through Status
	}
	status := engineService.Status(cmd.Context())

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	stateStyle := successStyle
	if status.State != domain.EngineReady {
		stateStyle = errorStyle
	}

	cmd.Println(headingStyle.Sprint("Engine"))
	cmd.Printf("  State:     %s\n", stateStyle.Sprint(status.StateName))
	if status.Error != "" {
		cmd.Printf("  Error:     %s\n", status.Error)
	}
	if status.EmbeddingModel != "" {
		cmd.Printf("  Embedding: %s\n", status.EmbeddingModel)
	}
	if status.RerankModel != "" {
		cmd.Printf("  Reranker:  %s\n", status.RerankModel)
	}
	if status.LLMModel != "" {
		cmd.Printf("  LLM:       %s\n", status.LLMModel)
	}
	cmd.Println()

	cmd.Println(headingStyle.Sprint("Index"))
	if !status.Index.Built {
		cmd.Println("  Not built. Run 'prepkit ingest' first.")
		return nil
	}
	cmd.Printf("  Entries:    %d\n", status.Index.Entries)
	cmd.Printf("  Dimensions: %d\n", status.Index.Dimensions)
	if status.Index.Model != "" {
		cmd.Printf("  Model:      %s\n", status.Index.Model)
	}
	if !status.Index.BuiltAt.IsZero() {
		cmd.Printf("  Built at:   %s\n", status.Index.BuiltAt.Format(time.RFC3339))
	}
	return nil
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Build the vector index from a corpus directory",
	Long: `Reads every document in the corpus directory, splits it into overlapping
chunks, embeds the chunks and replaces the vector index.

The directory defaults to the configured corpus (ingest.corpus_dir). The
previous index is kept if the run fails before the new one is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Bool("all-formats", false, "also load markdown, html and pdf files")
	ingestCmd.Flags().Bool("json", false, "output the report as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestFactory == nil {
		return errors.New("ingest service not configured")
	}
	allFormats, _ := cmd.Flags().GetBool("all-formats")
	asJSON, _ := cmd.Flags().GetBool("json")

	dir, err := corpusDir(args)
	if err != nil {
		return err
	}

	report, err := ingestFactory(allFormats).Ingest(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if asJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(headingStyle.Sprint("Ingestion complete"))
	cmd.Printf("  Directory:  %s\n", report.Dir)
	cmd.Printf("  Documents:  %d\n", report.Documents)
	cmd.Printf("  Chunks:     %d\n", report.Chunks)
	cmd.Printf("  Dimensions: %d\n", report.Dimensions)
	cmd.Printf("  Duration:   %s\n", report.Duration.Round(time.Millisecond))
	if len(report.Skipped) > 0 {
		cmd.Printf("  Skipped:    %d\n", len(report.Skipped))
		for _, s := range report.Skipped {
			cmd.Printf("    - %s\n", mutedStyle.Sprint(s))
		}
	}
	return nil
}

// corpusDir returns the directory argument or the configured corpus.
func corpusDir(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if settingsService == nil {
		return "", errors.New("no directory given and settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.Ingest.CorpusDir, nil
}

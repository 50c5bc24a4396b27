package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/prepkit/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/prepkit/internal/core/ports/driving"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API used by the web frontend.

Endpoints:
  POST /chat            {"message": "..."}
  POST /roadmap         {"company": "...", "role": "..."}
  POST /analyze-skills  multipart: company, role, file
  POST /analyze-ats     multipart: company, role, file
  POST /experiences     {"company": "..."}
  POST /ingest          rebuild the index from the configured corpus
  GET  /health, /ready, /metrics

The engine initialises in the background; /ready reports 503 until it is
ready to answer.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if careerService == nil || resumeDecoder == nil {
		return errors.New("services not configured")
	}

	cfg := httpapi.Config{}
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		cfg.Addr = settings.Server.Addr
		cfg.AllowOrigins = settings.Server.AllowOrigins
		cfg.CorpusDir = settings.Ingest.CorpusDir
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}

	var ingest driving.IngestService
	if ingestFactory != nil {
		ingest = ingestFactory(false)
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Career:  careerService,
		Resume:  resumeDecoder,
		Engine:  engineService,
		Ingest:  ingest,
		Metrics: metricsHandler,
	}, cfg)
	if err != nil {
		return err
	}

	warmEngine(cmd.Context())

	cmd.Printf("prepkit API listening on %s\n", server.Addr())
	return server.Run(cmd.Context())
}

// Package cli provides the cobra command tree for prepkit.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driving"
	"github.com/custodia-labs/prepkit/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// Persistent flag values.
var (
	configPath string
	verbose    bool
	logFormat  string
)

// IngestFactory returns an ingestion service. allFormats widens the corpus
// filter from the configured extensions to every format a normaliser accepts.
type IngestFactory func(allFormats bool) driving.IngestService

// Services holds everything the commands need.
type Services struct {
	Career   driving.CareerService
	Engine   driving.EngineService
	Ingest   IngestFactory
	Resume   driving.ResumeDecoder
	Prompts  driving.PromptService
	Settings driving.SettingsService

	// Metrics serves the prometheus exposition for the HTTP server.
	Metrics http.Handler

	// Close releases resources after the command finishes.
	Close func() error
}

// Options carries the persistent flags to a Bootstrap.
type Options struct {
	ConfigPath string
	Verbose    bool
	LogFormat  string
}

// Bootstrap builds the services once flags are parsed.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

// Injected services.
var (
	careerService   driving.CareerService
	engineService   driving.EngineService
	ingestFactory   IngestFactory
	resumeDecoder   driving.ResumeDecoder
	promptService   driving.PromptService
	settingsService driving.SettingsService
	metricsHandler  http.Handler
	closeServices   func() error

	bootstrap Bootstrap
)

// errReported marks a failure whose payload was already written to stdout.
var errReported = errors.New("error reported")

// skipServicesAnnotation marks commands that run without services.
const skipServicesAnnotation = "prepkit/skip-services"

var rootCmd = &cobra.Command{
	Use:   "prepkit",
	Short: "Interview preparation from your own knowledge base",
	Long: `prepkit answers interview-preparation questions from a directory of
interview experience write-ups.

It chunks and embeds the corpus into a vector index, retrieves and reranks
passages for each question, and asks an LLM for a grounded answer, a
preparation roadmap, a skills gap analysis or an ATS report.

Get started:
  prepkit settings show
  prepkit ingest ./knowledge_base
  prepkit chat "How many rounds does Acme have?"`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.prepkit/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap sets the function that builds services after flag parsing.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects services directly.
func SetServices(s *Services) {
	careerService = s.Career
	engineService = s.Engine
	ingestFactory = s.Ingest
	resumeDecoder = s.Resume
	promptService = s.Prompts
	settingsService = s.Settings
	metricsHandler = s.Metrics
	closeServices = s.Close
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetFormat(logFormat)
	color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))

	if cmd.Annotations[skipServicesAnnotation] == "true" || bootstrap == nil {
		return nil
	}

	services, err := bootstrap(cmd.Context(), Options{
		ConfigPath: configPath,
		Verbose:    verbose,
		LogFormat:  logFormat,
	})
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	SetServices(services)
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)

	if closeServices != nil {
		if cerr := closeServices(); cerr != nil {
			logger.Warn("shutdown: %v", cerr)
		}
	}

	if err == nil {
		return 0
	}
	if !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, errorStyle.Sprint("Error: ")+err.Error())
	}
	return 1
}

// warmEngine initialises the engine in the background for long-running
// servers, which report the engine state while it loads.
func warmEngine(ctx context.Context) {
	if engineService == nil {
		return
	}
	go func() {
		if err := engineService.Initialize(ctx); err != nil {
			logger.Error(err, "engine initialisation failed")
		}
	}()
}

// ensureReady initialises the engine for one-shot commands. A failed
// initialisation is logged; the operation then reports it in its payload.
func ensureReady(ctx context.Context) error {
	if careerService == nil {
		return errors.New("career service not configured")
	}
	if engineService == nil || engineService.State() == domain.EngineReady {
		return nil
	}
	if err := engineService.Initialize(ctx); err != nil {
		logger.Warn("engine initialisation failed: %v", err)
	}
	return nil
}

// Command prepkit is the interview-preparation assistant.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/prepkit/internal/adapters/driven/ai"
	"github.com/custodia-labs/prepkit/internal/adapters/driven/config/file"
	"github.com/custodia-labs/prepkit/internal/adapters/driving/cli"
	"github.com/custodia-labs/prepkit/internal/core/services"
	"github.com/custodia-labs/prepkit/internal/logger"
	"github.com/custodia-labs/prepkit/internal/metrics"
	"github.com/custodia-labs/prepkit/internal/normalisers/pdf"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)
	code := cli.Execute(ctx)

	stop()
	os.Exit(code)
}

// homeDir returns PREPKIT_HOME or ~/.prepkit.
func homeDir() (string, error) {
	if dir := os.Getenv("PREPKIT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".prepkit"), nil
}

func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("load .env: %v", err)
	}

	home, err := homeDir()
	if err != nil {
		return nil, err
	}

	var store *file.ConfigStore
	if opts.ConfigPath != "" {
		store, err = file.NewConfigStoreAt(opts.ConfigPath)
	} else {
		store, err = file.NewConfigStore(home)
	}
	if err != nil {
		return nil, err
	}
	settings := services.NewSettingsService(store, ai.NewConfigValidator())

	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		return nil, err
	}
	if err := prompts.Watch(ctx); err != nil {
		logger.Warn("prompt reload disabled: %v", err)
	}

	current, err := settings.Get()
	if err != nil {
		return nil, err
	}

	recorder := metrics.NewRecorder()
	loader := ai.NewLoader(settings.Get)
	engine := services.NewEngine(loader, prompts,
		services.WithMetrics(recorder),
		services.WithMaxTokens(current.LLM.MaxTokens),
	)

	ingest := &ingestor{
		engine:   engine,
		loader:   loader,
		settings: settings.Get,
		metrics:  recorder,
	}

	return &cli.Services{
		Career:   engine,
		Engine:   engine,
		Ingest:   ingest.factory,
		Resume:   services.NewResumeService(pdf.New()),
		Prompts:  services.NewPromptService(prompts),
		Settings: settings,
		Metrics:  recorder.Handler(),
		Close:    engine.Close,
	}, nil
}

package main

import (
	"context"

	"github.com/custodia-labs/prepkit/internal/adapters/driven/ai"
	"github.com/custodia-labs/prepkit/internal/connectors/filesystem"
	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
	"github.com/custodia-labs/prepkit/internal/core/ports/driving"
	"github.com/custodia-labs/prepkit/internal/core/services"
	"github.com/custodia-labs/prepkit/internal/logger"
	"github.com/custodia-labs/prepkit/internal/normalisers"
	"github.com/custodia-labs/prepkit/internal/postprocessors"
)

// allFormats are the corpus extensions with a registered normaliser.
var allFormats = []string{".txt", ".md", ".markdown", ".html", ".htm", ".pdf"}

// ingestor builds an IngestService per run. A Ready engine lends its
// embedding model, index and gate so queries see the swap atomically;
// otherwise only the ingestion components are loaded.
type ingestor struct {
	engine   *services.Engine
	loader   *ai.Loader
	settings ai.SettingsSource
	metrics  driven.MetricsRecorder
}

func (i *ingestor) factory(all bool) driving.IngestService {
	return &lazyIngest{ingestor: i, all: all}
}

type lazyIngest struct {
	*ingestor
	all bool
}

func (l *lazyIngest) Ingest(ctx context.Context, dir string) (*domain.IngestReport, error) {
	settings, err := l.settings()
	if err != nil {
		return nil, err
	}

	components, ok := l.engine.Components()
	if !ok {
		components, err = l.loader.LoadIngest(ctx)
		if err != nil {
			return nil, &domain.IngestionError{Dir: dir, Err: err}
		}
		defer func() {
			if cerr := components.Close(); cerr != nil {
				logger.Warn("close ingest components: %v", cerr)
			}
		}()
	}

	pipeline, err := postprocessors.NewIngestPipeline(settings.Ingest)
	if err != nil {
		return nil, err
	}

	extensions := settings.Ingest.Extensions
	if l.all {
		extensions = allFormats
	}

	svc := services.NewIngestService(
		filesystem.NewCorpusReader(extensions...),
		normalisers.NewDefaultRegistry(),
		pipeline,
		components.Embedding,
		components.Index,
		ingestOptions(settings.Ingest, l.engine.Gate(), l.metrics),
	)
	return svc.Ingest(ctx, dir)
}

// ingestOptions carries the ingest settings into the service options.
func ingestOptions(s domain.IngestSettings, gate *services.IndexGate, metrics driven.MetricsRecorder) services.IngestOptions {
	return services.IngestOptions{
		BatchSize:     s.BatchSize,
		Concurrency:   s.Concurrency,
		RatePerSecond: s.RatePerSecond,
		Gate:          gate,
		Metrics:       metrics,
	}
}

// Package metrics provides Prometheus instruments for the query and ingestion pipelines.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.MetricsRecorder = (*Recorder)(nil)

const namespace = "prepkit"

// Recorder holds all Prometheus metrics for prepkit.
// Each Recorder owns its registry so tests and multiple engines never collide.
type Recorder struct {
	registry *prometheus.Registry

	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	StageDuration     *prometheus.HistogramVec
	StageErrorsTotal  *prometheus.CounterVec
	RerankFallbacks   *prometheus.CounterVec

	IngestRunsTotal  *prometheus.CounterVec
	IngestDocuments  prometheus.Gauge
	IngestChunks     prometheus.Gauge
	IngestDuration   prometheus.Histogram
	EngineStateGauge *prometheus.GaugeVec
}

// NewRecorder creates and registers all metrics on a fresh registry.
// Go runtime and process collectors are included.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,

		OperationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of query operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of query operations in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		StageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation", "stage"},
		),
		StageErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_errors_total",
				Help:      "Total number of failed pipeline stages",
			},
			[]string{"operation", "stage"},
		),
		RerankFallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rerank_degraded_total",
				Help:      "Reranker failures recovered by keeping retrieval order",
			},
			[]string{"operation"},
		),
		IngestRunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_runs_total",
				Help:      "Total number of ingestion runs by status",
			},
			[]string{"status"},
		),
		IngestDocuments: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingest_documents",
			Help:      "Documents loaded by the last successful ingestion",
		}),
		IngestChunks: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingest_chunks",
			Help:      "Chunks indexed by the last successful ingestion",
		}),
		IngestDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Duration of ingestion runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		EngineStateGauge: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "engine_state",
				Help:      "1 for the current engine state, 0 otherwise",
			},
			[]string{"state"},
		),
	}
}

// ObserveStage records the duration and outcome of one pipeline stage.
func (r *Recorder) ObserveStage(operation, stage string, d time.Duration, err error) {
	r.StageDuration.WithLabelValues(operation, stage).Observe(d.Seconds())
	if err != nil {
		r.StageErrorsTotal.WithLabelValues(operation, stage).Inc()
	}
}

// ObserveOperation records a completed operation.
func (r *Recorder) ObserveOperation(operation, outcome string, d time.Duration) {
	r.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	r.OperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RerankDegraded counts a reranker failure that fell back to retrieval order.
func (r *Recorder) RerankDegraded(operation string) {
	r.RerankFallbacks.WithLabelValues(operation).Inc()
}

// ObserveIngest records a finished ingestion run.
// Document and chunk gauges only move on success.
func (r *Recorder) ObserveIngest(documents, chunks int, d time.Duration, err error) {
	r.IngestDuration.Observe(d.Seconds())

	status := "ok"
	switch {
	case err == nil:
		r.IngestDocuments.Set(float64(documents))
		r.IngestChunks.Set(float64(chunks))
	case errors.Is(err, domain.ErrEmptyCorpus):
		status = "empty_corpus"
	case errors.Is(err, domain.ErrCorpusNotFound):
		status = "not_found"
	default:
		status = "error"
	}
	r.IngestRunsTotal.WithLabelValues(status).Inc()
}

// SetEngineState publishes the current engine state.
func (r *Recorder) SetEngineState(state string) {
	for _, s := range []domain.EngineState{
		domain.EngineUninitialized, domain.EngineInitializing, domain.EngineReady, domain.EngineFailed,
	} {
		v := 0.0
		if s.String() == state {
			v = 1
		}
		r.EngineStateGauge.WithLabelValues(s.String()).Set(v)
	}
}

// Registry returns the registry holding every metric.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
